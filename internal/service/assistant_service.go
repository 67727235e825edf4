package service

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/assistant/pipeline"
	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/assistant/strategy"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/events"
	"ai-shopassist-be/pkg/llm"
	pktNats "ai-shopassist-be/pkg/nats"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

// IAssistantService is the conversational surface of the shop assistant
type IAssistantService interface {
	Query(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error)
	History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// assistantService wires the whole answering pipeline: analyzer, the four
// strategies around one shared retriever, and the per-turn executor.
type assistantService struct {
	executor       *pipeline.Executor
	sessions       store.SessionStore
	natsPub        *pktNats.Publisher
	requestTimeout time.Duration
	traceLogger    *log.Logger
}

func NewAssistantService(
	index *search.Index,
	indexer embedding.Indexer,
	llmProvider llm.LLMProvider,
	sessions store.SessionStore,
	tuning strategy.Tuning,
	requestTimeout time.Duration,
	natsPub *pktNats.Publisher,
) IAssistantService {

	traceLogger := initAssistantLogger()

	queryAnalyzer := analyzer.NewAnalyzer(llmProvider, traceLogger)
	generator := response.NewGenerator(llmProvider, traceLogger)
	retriever := strategy.NewRetriever(index, indexer, tuning, traceLogger)

	conversational := strategy.NewConversational(retriever, generator, traceLogger)
	agentic := strategy.NewAgentic(retriever, generator, traceLogger)
	hybrid := strategy.NewHybrid(retriever, generator, traceLogger)
	combined := strategy.NewCombined(
		[]strategy.Strategy{conversational, agentic, hybrid},
		tuning,
		traceLogger,
	)

	selector := strategy.NewSelector(conversational, agentic, hybrid, combined, tuning)
	executor := pipeline.NewExecutor(queryAnalyzer, selector, sessions, traceLogger)

	return &assistantService{
		executor:       executor,
		sessions:       sessions,
		natsPub:        natsPub,
		requestTimeout: requestTimeout,
		traceLogger:    traceLogger,
	}
}

// initAssistantLogger writes the pipeline trace to its own file so turn-level
// diagnostics never mix with the application log.
func initAssistantLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "assistant.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[ASSISTANT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// Query resolves one turn. A request-level timeout bounds the whole pipeline;
// when it fires the caller still gets a valid response with an apology rather
// than a transport error.
func (as *assistantService) Query(ctx context.Context, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, as.requestTimeout)
	defer cancel()

	result, err := as.executor.Execute(ctx, request.SessionId, request.Query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			as.traceLogger.Printf("[WARN] Turn timed out after %s for session %q", as.requestTimeout, request.SessionId)
			return &dto.QueryResponse{
				SessionId:         request.SessionId,
				Answer:            response.MsgGenerationFailed,
				Products:          []dto.ProductResultDTO{},
				Sources:           []dto.SourceDTO{},
				FollowUpQuestions: []string{},
			}, nil
		}
		return nil, err
	}

	resp := &dto.QueryResponse{
		SessionId:         result.SessionID,
		Answer:            result.Answer,
		Products:          toProductDTOs(result.Products),
		Sources:           toSourceDTOs(result.Sources),
		FollowUpQuestions: result.FollowUpQuestions,
	}
	if resp.FollowUpQuestions == nil {
		resp.FollowUpQuestions = []string{}
	}
	if request.Debug {
		resp.Debug = &dto.QueryDebug{
			Intent:     string(result.Intent),
			Strategy:   string(result.Strategy),
			Confidence: result.Confidence,
			ElapsedMs:  result.Elapsed.Milliseconds(),
		}
	}
	return resp, nil
}

func (as *assistantService) History(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	session := as.sessions.Snapshot(sessionId)
	if session == nil {
		return nil, nil
	}

	messages := make([]dto.ChatTurnDTO, len(session.History))
	for i, msg := range session.History {
		messages[i] = dto.ChatTurnDTO{
			Role:      msg.Role,
			Content:   msg.Content,
			Intent:    msg.Intent,
			CreatedAt: msg.Timestamp,
		}
	}

	return &dto.SessionHistoryResponse{
		SessionId:   session.ID,
		Messages:    messages,
		Preferences: session.Preferences,
	}, nil
}

func (as *assistantService) DeleteSession(ctx context.Context, sessionId string) error {
	as.sessions.Delete(sessionId)

	if as.natsPub != nil {
		event := events.BaseEvent{
			Type:       constant.EventSessionDeleted,
			Data:       map[string]interface{}{"session_id": sessionId},
			OccurredAt: time.Now(),
		}
		if err := as.natsPub.Publish(ctx, event); err != nil {
			as.traceLogger.Printf("[WARN] Failed to publish session deleted event: %v", err)
		}
	}
	return nil
}

func toProductDTOs(results []search.SearchResult) []dto.ProductResultDTO {
	out := make([]dto.ProductResultDTO, len(results))
	for i, res := range results {
		doc := res.Document
		currency := ""
		if c, ok := doc.Metadata["currency"].(string); ok {
			currency = c
		}
		out[i] = dto.ProductResultDTO{
			Id:       doc.ID,
			Title:    doc.Title,
			Category: doc.Category,
			Gender:   doc.Gender,
			Brand:    doc.Brand,
			Price:    doc.Price,
			Currency: currency,
			ImageURL: doc.ImageURL,
			URL:      doc.URL,
			Score:    res.Score,
		}
	}
	return out
}

func toSourceDTOs(results []search.SearchResult) []dto.SourceDTO {
	out := make([]dto.SourceDTO, len(results))
	for i, res := range results {
		doc := res.Document
		snippet := doc.Content
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		out[i] = dto.SourceDTO{
			Id:      doc.ID,
			Title:   doc.Title,
			Snippet: snippet,
			Score:   res.Score,
		}
	}
	return out
}
