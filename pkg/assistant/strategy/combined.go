package strategy

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ai-shopassist-be/pkg/assistant/response"
)

// Combined fans the turn out to every other strategy, waits for all of them
// to settle, and keeps the best answer. One slow or failing branch must
// never take the turn down with it, so each branch runs under its own
// timeout and failures only shrink the candidate set.
type Combined struct {
	branches []Strategy
	tuning   Tuning
	logger   *log.Logger
}

func NewCombined(branches []Strategy, tuning Tuning, logger *log.Logger) *Combined {
	if logger == nil {
		logger = log.Default()
	}
	return &Combined{
		branches: branches,
		tuning:   tuning,
		logger:   logger,
	}
}

func (s *Combined) Type() Type { return TypeCombined }

type branchOutcome struct {
	resp *Response
	err  error
}

func (s *Combined) Execute(ctx context.Context, turn *Turn) (*Response, error) {
	outcomes := make([]branchOutcome, len(s.branches))

	var wg sync.WaitGroup
	for i, branch := range s.branches {
		wg.Add(1)
		go func(i int, branch Strategy) {
			defer wg.Done()
			outcomes[i] = s.runBranch(ctx, branch, turn)
		}(i, branch)
	}
	wg.Wait()

	candidates := make([]*Response, 0, len(outcomes))
	for i, out := range outcomes {
		if out.err != nil {
			s.logger.Printf("[COMBINED] branch %s failed: %v", s.branches[i].Type(), out.err)
			continue
		}
		if out.resp != nil {
			candidates = append(candidates, out.resp)
		}
	}

	if len(candidates) == 0 {
		s.logger.Printf("[COMBINED] every branch failed, returning apology")
		return &Response{
			Answer:     response.MsgGenerationFailed,
			Confidence: 0.3,
			Strategy:   TypeCombined,
			Note:       "combined: every branch failed",
		}, nil
	}

	best := pickBest(candidates)
	won := best.Strategy
	best.Note = fmt.Sprintf("combined: picked %s of %d settled; %s", won, len(candidates), best.Note)
	best.Strategy = TypeCombined
	s.logger.Printf("[COMBINED] picked %s (confidence %.2f) from %d settled branches", won, best.Confidence, len(candidates))
	return best, nil
}

// runBranch executes one branch under its own timeout. The select keeps the
// fan-out settling on time even when a provider ignores its context.
func (s *Combined) runBranch(ctx context.Context, branch Strategy, turn *Turn) branchOutcome {
	bctx, cancel := context.WithTimeout(ctx, s.tuning.BranchTimeout)
	defer cancel()

	done := make(chan branchOutcome, 1)
	go func() {
		resp, err := branch.Execute(bctx, turn)
		done <- branchOutcome{resp: resp, err: err}
	}()

	select {
	case out := <-done:
		return out
	case <-bctx.Done():
		return branchOutcome{err: bctx.Err()}
	}
}

func pickBest(candidates []*Response) *Response {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if beats(c, best) {
			best = c
		}
	}
	return best
}

// beats reports whether a is a strictly better answer than b. Confidence
// decides when the gap is clear; close calls prefer concrete products, then
// the fuller answer. Ties keep the earlier branch so picking stays
// deterministic.
func beats(a, b *Response) bool {
	if a.Confidence > b.Confidence+0.1 {
		return true
	}
	if b.Confidence > a.Confidence+0.1 {
		return false
	}
	if (len(a.Products) > 0) != (len(b.Products) > 0) {
		return len(a.Products) > 0
	}
	return len(a.Answer) > len(b.Answer)
}
