package strategy

import (
	"context"
	"sort"
	"time"

	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

// Type names an answering strategy.
type Type string

const (
	TypeConversational Type = "conversational"
	TypeAgentic        Type = "agentic"
	TypeHybrid         Type = "hybrid"
	TypeCombined       Type = "combined"
)

// Turn bundles the inputs every strategy reads: the raw query, its analysis,
// and the session snapshot. Strategies never mutate the session; persistence
// happens in the pipeline after the turn resolves.
type Turn struct {
	Query    string
	Analysis *analyzer.QueryAnalysis
	Session  *store.Session
}

// IsFollowUp reports whether this turn continues an active conversation.
func (t *Turn) IsFollowUp() bool {
	return t.Analysis != nil && t.Analysis.IsFollowUp && t.Session.HasContext()
}

// wantsRetrieval reports whether the turn's intent is worth a search at all.
// Greetings and order questions skip retrieval so they never surface stray
// product matches.
func wantsRetrieval(t *Turn) bool {
	return t.Analysis == nil || t.Analysis.Intent.NeedsRetrieval()
}

// Response is the outcome of executing one strategy for one turn.
type Response struct {
	Answer            string
	Products          []search.SearchResult
	Sources           []search.SearchResult
	FollowUpQuestions []string
	Confidence        float64
	Strategy          Type

	// Note is an internal diagnostic trail. It goes to logs and traces,
	// NEVER into anything rendered to the customer.
	Note string
}

// Strategy is one approach to answering a turn. Execute returns an error
// only when the strategy produced nothing usable; a degraded answer is a
// success.
type Strategy interface {
	Type() Type
	Execute(ctx context.Context, turn *Turn) (*Response, error)
}

// Tuning carries the knobs strategies share. Deployments override them
// through configuration; the zero value is not usable, start from
// DefaultTuning.
type Tuning struct {
	ProductWeights   search.Weights
	KnowledgeWeights search.Weights
	ProductLimit     int
	KnowledgeLimit   int

	// AgenticMinQueryLen and AgenticMinConfidence gate the agentic
	// strategy to long, well-understood queries.
	AgenticMinQueryLen   int
	AgenticMinConfidence float64

	// BranchTimeout bounds each branch of the combined fan-out.
	BranchTimeout time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{
		ProductWeights:       search.DefaultProductWeights(),
		KnowledgeWeights:     search.DefaultKnowledgeWeights(),
		ProductLimit:         5,
		KnowledgeLimit:       3,
		AgenticMinQueryLen:   40,
		AgenticMinConfidence: 0.75,
		BranchTimeout:        8 * time.Second,
	}
}

// Candidate pairs a strategy with its selection rule. Lower priority wins.
type Candidate struct {
	Priority int
	Reason   string
	When     func(*Turn) bool
	Strategy Strategy
}

// Selector picks the strategy for a turn. Selection is a pure function of
// the turn: no retrieval, no model calls, no session writes.
type Selector struct {
	candidates []Candidate
	fallback   Strategy
}

// NewSelector wires the standard candidate table. The combined strategy is
// the unconditional fallback and must not be nil.
func NewSelector(conversational, agentic, hybrid, combined Strategy, tuning Tuning) *Selector {
	candidates := []Candidate{
		{
			Priority: 1,
			Reason:   "follow-up inside an active conversation",
			Strategy: conversational,
			When: func(t *Turn) bool {
				return t.IsFollowUp()
			},
		},
		{
			Priority: 2,
			Reason:   "long, well-understood query",
			Strategy: agentic,
			When: func(t *Turn) bool {
				if t.Analysis == nil {
					return false
				}
				return len(t.Query) >= tuning.AgenticMinQueryLen &&
					t.Analysis.Confidence > tuning.AgenticMinConfidence
			},
		},
		{
			Priority: 3,
			Reason:   "retrieval-backed intent",
			Strategy: hybrid,
			When: func(t *Turn) bool {
				return t.Analysis != nil && t.Analysis.Intent.NeedsRetrieval()
			},
		},
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	return &Selector{
		candidates: candidates,
		fallback:   combined,
	}
}

// Select returns the first candidate whose rule matches, plus a short reason
// for the trace log.
func (s *Selector) Select(turn *Turn) (Strategy, string) {
	for _, c := range s.candidates {
		if c.Strategy == nil {
			continue
		}
		if c.When(turn) {
			return c.Strategy, c.Reason
		}
	}
	return s.fallback, "no specific rule matched, using combined fan-out"
}
