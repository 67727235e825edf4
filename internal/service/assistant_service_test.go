package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/assistant/strategy"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/llm/mock"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

func newTestAssistantService(provider llm.LLMProvider, timeout time.Duration) IAssistantService {
	indexer := embedding.NewHeuristicIndexer()
	index := search.NewIndex()

	seed := []struct {
		id, title, content, category, gender string
		price                                float64
	}{
		{"w1", "Chrono Steel 42", "A stainless steel chronograph watch for men.", "watch", "men", 1290},
		{"w2", "Petite Lune 28", "A small elegant watch for women.", "watch", "women", 740},
		{"p1", "Noir Absolu", "A deep oud fragrance for evening wear.", "perfume", "", 180},
	}
	for _, d := range seed {
		feats := indexer.Index(d.title + " " + d.content + " " + d.category)
		index.Upsert(search.Document{
			ID: d.id, Kind: search.KindProduct, Title: d.title, Content: d.content,
			Category: d.category, Gender: d.gender, Price: d.price,
			Embedding: feats.Embedding, Keywords: feats.Keywords, Active: true,
		})
	}

	sessions := memory.NewSessionRepository(time.Hour)
	return NewAssistantService(index, indexer, provider, sessions, strategy.DefaultTuning(), timeout, nil)
}

// scriptedProvider answers the analysis prompt with JSON and every other
// prompt with a fixed reply.
func scriptedProvider(analysisJSON, answer string) *mock.MockProvider {
	return &mock.MockProvider{
		GenerateFunc: func(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
			if strings.Contains(prompt, "<intent_definitions>") {
				return analysisJSON, nil
			}
			return answer, nil
		},
	}
}

func TestAssistantQueryAnswers(t *testing.T) {
	provider := scriptedProvider(
		`{"intent": "product_search", "confidence": 0.9, "product_category": "watches", "should_start_product_flow": true}`,
		"The Chrono Steel 42 at $1290.00 is a strong pick for you.",
	)
	svc := newTestAssistantService(provider, 10*time.Second)

	res, err := svc.Query(context.Background(), &dto.QueryRequest{
		Query: "show me a steel watch for men",
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if res.SessionId == "" {
		t.Error("a new conversation should mint a session id")
	}
	if res.Answer != "The Chrono Steel 42 at $1290.00 is a strong pick for you." {
		t.Errorf("Answer = %q, want model answer", res.Answer)
	}
	if res.Products == nil {
		t.Error("Products must be a slice, not nil")
	}
	if res.FollowUpQuestions == nil {
		t.Error("FollowUpQuestions must be a slice, not nil")
	}
	if res.Debug == nil {
		t.Fatal("Debug requested but missing")
	}
	if res.Debug.Intent != "product_search" {
		t.Errorf("Debug.Intent = %q, want product_search", res.Debug.Intent)
	}
	if res.Debug.Strategy == "" {
		t.Error("Debug.Strategy should name the executed strategy")
	}
}

func TestAssistantQueryTimeoutApologizes(t *testing.T) {
	// The model hangs until the deadline, so every downstream context check
	// observes an expired turn.
	stuck := &mock.MockProvider{
		GenerateFunc: func(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	svc := newTestAssistantService(stuck, 50*time.Millisecond)

	res, err := svc.Query(context.Background(), &dto.QueryRequest{
		SessionId: "timeout-session",
		Query:     "show me watches",
	})
	if err != nil {
		t.Fatalf("Query() error = %v, a timeout must not surface as a transport error", err)
	}

	if res.Answer != response.MsgGenerationFailed {
		t.Errorf("Answer = %q, want apology", res.Answer)
	}
	if res.SessionId != "timeout-session" {
		t.Errorf("SessionId = %q, want caller's session id", res.SessionId)
	}
	if res.Products == nil || len(res.Products) != 0 {
		t.Errorf("Products = %v, want empty slice", res.Products)
	}
	if res.FollowUpQuestions == nil {
		t.Error("FollowUpQuestions must be a slice, not nil")
	}
}

func TestAssistantHistoryRoundtrip(t *testing.T) {
	provider := scriptedProvider(
		`{"intent": "product_search", "confidence": 0.9, "product_category": "watches"}`,
		"Here are some watches you might like.",
	)
	svc := newTestAssistantService(provider, 10*time.Second)

	res, err := svc.Query(context.Background(), &dto.QueryRequest{Query: "show me watches"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	history, err := svc.History(context.Background(), res.SessionId)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if history == nil {
		t.Fatal("History() = nil, want the recorded session")
	}
	if len(history.Messages) != 2 {
		t.Fatalf("Messages = %d, want user and assistant turns", len(history.Messages))
	}
	if history.Messages[0].Role != store.RoleUser {
		t.Errorf("first role = %q, want %q", history.Messages[0].Role, store.RoleUser)
	}
	if history.Messages[0].Content != "show me watches" {
		t.Errorf("first content = %q, want the query", history.Messages[0].Content)
	}
	if history.Messages[1].Role != store.RoleAssistant {
		t.Errorf("second role = %q, want %q", history.Messages[1].Role, store.RoleAssistant)
	}

	missing, err := svc.History(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if missing != nil {
		t.Errorf("History(missing) = %+v, want nil", missing)
	}
}

func TestAssistantDeleteSession(t *testing.T) {
	provider := scriptedProvider(
		`{"intent": "product_search", "confidence": 0.9}`,
		"Here you go.",
	)
	svc := newTestAssistantService(provider, 10*time.Second)

	res, err := svc.Query(context.Background(), &dto.QueryRequest{Query: "show me watches"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if err := svc.DeleteSession(context.Background(), res.SessionId); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	history, err := svc.History(context.Background(), res.SessionId)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if history != nil {
		t.Errorf("History() = %+v, want nil after delete", history)
	}
}
