package strategy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/search"
)

// Agentic works long, well-understood queries in explicit steps: gather
// catalog evidence, gather knowledge evidence, then synthesize. Each step is
// logged so the trace shows WHERE a slow or empty answer came from.
type Agentic struct {
	retriever *Retriever
	gen       *response.Generator
	logger    *log.Logger
}

func NewAgentic(retriever *Retriever, gen *response.Generator, logger *log.Logger) *Agentic {
	if logger == nil {
		logger = log.Default()
	}
	return &Agentic{
		retriever: retriever,
		gen:       gen,
		logger:    logger,
	}
}

func (s *Agentic) Type() Type { return TypeAgentic }

func (s *Agentic) Execute(ctx context.Context, turn *Turn) (*Response, error) {
	var steps []string
	var products, knowledge []search.SearchResult

	if wantsRetrieval(turn) {
		q := s.retriever.Features(turn)
		steps = append(steps, fmt.Sprintf("features tokens=%d budget=%v", len(q.Tokens), q.Budget != nil))

		products = s.retriever.Products(q)
		steps = append(steps, fmt.Sprintf("catalog hits=%d", len(products)))
		s.logger.Printf("[AGENTIC] step catalog: %d hits", len(products))
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		knowledge = s.retriever.Knowledge(q)
		steps = append(steps, fmt.Sprintf("knowledge hits=%d", len(knowledge)))
		s.logger.Printf("[AGENTIC] step knowledge: %d hits", len(knowledge))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	} else {
		steps = append(steps, "retrieval skipped for intent")
	}

	in := response.Input{
		Query:     turn.Query,
		Analysis:  turn.Analysis,
		Session:   turn.Session,
		Products:  products,
		Knowledge: knowledge,
	}
	answer := s.gen.Generate(ctx, in)
	steps = append(steps, "synthesized")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Response{
		Answer:            answer,
		Products:          products,
		Sources:           knowledge,
		FollowUpQuestions: s.gen.FollowUps(in),
		Confidence:        0.8,
		Strategy:          TypeAgentic,
		Note:              "agentic: " + strings.Join(steps, "; "),
	}, nil
}
