package strategy

import (
	"context"
	"fmt"
	"log"

	"ai-shopassist-be/pkg/assistant/response"
)

// Conversational answers follow-up turns. It leans on the session context
// and refreshes product results only when the follow-up narrows a product
// topic, so "are those waterproof?" never re-runs a full catalog search for
// nothing.
type Conversational struct {
	retriever *Retriever
	gen       *response.Generator
	logger    *log.Logger
}

func NewConversational(retriever *Retriever, gen *response.Generator, logger *log.Logger) *Conversational {
	if logger == nil {
		logger = log.Default()
	}
	return &Conversational{
		retriever: retriever,
		gen:       gen,
		logger:    logger,
	}
}

func (s *Conversational) Type() Type { return TypeConversational }

func (s *Conversational) Execute(ctx context.Context, turn *Turn) (*Response, error) {
	in := response.Input{
		Query:    turn.Query,
		Analysis: turn.Analysis,
		Session:  turn.Session,
	}

	refreshed := false
	if s.shouldRefresh(turn) {
		q := s.retriever.Features(turn)
		in.Products = s.retriever.Products(q)
		refreshed = true
	}

	answer := s.gen.Generate(ctx, in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Response{
		Answer:            answer,
		Products:          in.Products,
		FollowUpQuestions: s.gen.FollowUps(in),
		Confidence:        0.75,
		Strategy:          TypeConversational,
		Note:              fmt.Sprintf("conversational: refreshed_products=%v count=%d", refreshed, len(in.Products)),
	}, nil
}

// shouldRefresh decides whether the follow-up changes what the customer
// wants to see rather than asking about what was already shown.
func (s *Conversational) shouldRefresh(turn *Turn) bool {
	if turn.Analysis == nil {
		return false
	}
	if turn.Analysis.Intent.ProductRelated() {
		return true
	}
	if _, ok := turn.Analysis.Entities["budget"]; ok {
		return true
	}
	if _, ok := turn.Analysis.Entities["category"]; ok {
		return true
	}
	if _, ok := turn.Analysis.Entities["gender"]; ok {
		return true
	}
	return false
}
