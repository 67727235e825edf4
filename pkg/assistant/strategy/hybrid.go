package strategy

import (
	"context"
	"fmt"
	"log"

	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/search"
)

// Hybrid is the workhorse: one catalog search, one knowledge search, one
// synthesis. Its confidence rises with the top result's score so the
// combined fan-out can tell a strong retrieval from a weak one.
type Hybrid struct {
	retriever *Retriever
	gen       *response.Generator
	logger    *log.Logger
}

func NewHybrid(retriever *Retriever, gen *response.Generator, logger *log.Logger) *Hybrid {
	if logger == nil {
		logger = log.Default()
	}
	return &Hybrid{
		retriever: retriever,
		gen:       gen,
		logger:    logger,
	}
}

func (s *Hybrid) Type() Type { return TypeHybrid }

func (s *Hybrid) Execute(ctx context.Context, turn *Turn) (*Response, error) {
	var products, knowledge []search.SearchResult
	if wantsRetrieval(turn) {
		q := s.retriever.Features(turn)
		if turn.Analysis == nil || turn.Analysis.Intent != analyzer.IntentGeneralQuestion {
			products = s.retriever.Products(q)
		}
		knowledge = s.retriever.Knowledge(q)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := response.Input{
		Query:     turn.Query,
		Analysis:  turn.Analysis,
		Session:   turn.Session,
		Products:  products,
		Knowledge: knowledge,
	}
	answer := s.gen.Generate(ctx, in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	confidence := 0.6 + s.retriever.RelevanceBonus(products)

	return &Response{
		Answer:            answer,
		Products:          products,
		Sources:           knowledge,
		FollowUpQuestions: s.gen.FollowUps(in),
		Confidence:        confidence,
		Strategy:          TypeHybrid,
		Note:              fmt.Sprintf("hybrid: products=%d knowledge=%d confidence=%.2f", len(products), len(knowledge), confidence),
	}, nil
}
