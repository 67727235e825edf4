package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

type stubStrategy struct {
	typ       Type
	resp      *Response
	err       error
	delay     time.Duration
	ignoreCtx bool
}

func (s *stubStrategy) Type() Type { return s.typ }

func (s *stubStrategy) Execute(ctx context.Context, turn *Turn) (*Response, error) {
	if s.delay > 0 {
		if s.ignoreCtx {
			time.Sleep(s.delay)
		} else {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.resp
	return &resp, nil
}

func activeSession() *store.Session {
	return &store.Session{
		ID: "s1",
		History: []store.Message{
			{Role: store.RoleUser, Content: "show me watches"},
			{Role: store.RoleAssistant, Content: "Here are some watches"},
		},
	}
}

func seededRetriever(t *testing.T, tuning Tuning) *Retriever {
	t.Helper()
	indexer := embedding.NewHeuristicIndexer()
	idx := search.NewIndex()

	docs := []struct {
		id, title, content, category, gender, brand string
		price                                       float64
	}{
		{"w1", "Classic Men Steel Watch", "A classic steel watch for men with sapphire glass.", "watch", "men", "Meridian", 450},
		{"w2", "Rose Gold Ladies Watch", "An elegant rose gold watch for women.", "watch", "women", "Meridian", 620},
		{"p1", "Oud Noir Perfume", "A deep oud fragrance.", "perfume", "", "Maison Lys", 150},
	}
	for _, d := range docs {
		feats := indexer.Index(d.title + " " + d.content + " " + d.category + " " + d.brand)
		idx.Upsert(search.Document{
			ID: d.id, Kind: search.KindProduct, Title: d.title, Content: d.content,
			Category: d.category, Gender: d.gender, Brand: d.brand, Price: d.price,
			Embedding: feats.Embedding, Keywords: feats.Keywords, Active: true,
		})
	}
	kfeats := indexer.Index("Returns are accepted within 30 days with the original receipt.")
	idx.Upsert(search.Document{
		ID: "k1#0", ParentID: "k1", Kind: search.KindKnowledge, Title: "Return policy",
		Content:   "Returns are accepted within 30 days with the original receipt.",
		Embedding: kfeats.Embedding, Keywords: kfeats.Keywords, Active: true,
	})

	return NewRetriever(idx, indexer, tuning, nil)
}

func TestSelectorRules(t *testing.T) {
	conversational := &stubStrategy{typ: TypeConversational}
	agentic := &stubStrategy{typ: TypeAgentic}
	hybrid := &stubStrategy{typ: TypeHybrid}
	combined := &stubStrategy{typ: TypeCombined}
	sel := NewSelector(conversational, agentic, hybrid, combined, DefaultTuning())

	longQuery := "I am looking for an elegant anniversary gift for my wife, ideally a rose gold watch under 700 dollars"

	tests := []struct {
		name string
		turn *Turn
		want Type
	}{
		{
			name: "follow-up picks conversational",
			turn: &Turn{
				Query:    "under 300?",
				Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, IsFollowUp: true, Confidence: 0.9},
				Session:  activeSession(),
			},
			want: TypeConversational,
		},
		{
			name: "long well-understood query picks agentic",
			turn: &Turn{
				Query:    longQuery,
				Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentRecommendation, Confidence: 0.9},
			},
			want: TypeAgentic,
		},
		{
			name: "short product query picks hybrid",
			turn: &Turn{
				Query:    "gold watches",
				Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, Confidence: 0.6},
			},
			want: TypeHybrid,
		},
		{
			name: "greeting falls through to combined",
			turn: &Turn{
				Query:    "hello",
				Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentGreeting, Confidence: 0.9},
			},
			want: TypeCombined,
		},
		{
			name: "low confidence long query falls through to hybrid",
			turn: &Turn{
				Query:    longQuery,
				Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentRecommendation, Confidence: 0.5},
			},
			want: TypeHybrid,
		},
	}
	for _, tt := range tests {
		got, reason := sel.Select(tt.turn)
		if got.Type() != tt.want {
			t.Errorf("%s: Select = %s (%s), want %s", tt.name, got.Type(), reason, tt.want)
		}
	}
}

func TestSelectorIsPure(t *testing.T) {
	sel := NewSelector(
		&stubStrategy{typ: TypeConversational},
		&stubStrategy{typ: TypeAgentic},
		&stubStrategy{typ: TypeHybrid},
		&stubStrategy{typ: TypeCombined},
		DefaultTuning(),
	)
	session := activeSession()
	session.Preferences = map[string]string{"category": "watch"}
	turn := &Turn{
		Query:    "cheaper?",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, IsFollowUp: true, Confidence: 0.95},
		Session:  session,
	}

	first, _ := sel.Select(turn)
	second, _ := sel.Select(turn)
	if first.Type() != second.Type() {
		t.Errorf("Select not deterministic: %s then %s", first.Type(), second.Type())
	}
	if len(session.History) != 2 || len(session.Preferences) != 1 {
		t.Error("Select mutated the session")
	}
}

func TestSelectorFollowUpBeatsAgentic(t *testing.T) {
	sel := NewSelector(
		&stubStrategy{typ: TypeConversational},
		&stubStrategy{typ: TypeAgentic},
		&stubStrategy{typ: TypeHybrid},
		&stubStrategy{typ: TypeCombined},
		DefaultTuning(),
	)
	turn := &Turn{
		Query:    "what about something similar but in rose gold instead of the steel finish?",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, IsFollowUp: true, Confidence: 0.95},
		Session:  activeSession(),
	}
	got, _ := sel.Select(turn)
	if got.Type() != TypeConversational {
		t.Errorf("Select = %s, want conversational to outrank agentic for follow-ups", got.Type())
	}
}

func TestCombinedPicksClearConfidenceWinner(t *testing.T) {
	branches := []Strategy{
		&stubStrategy{typ: TypeHybrid, resp: &Response{Answer: "weak", Confidence: 0.5, Strategy: TypeHybrid}},
		&stubStrategy{typ: TypeAgentic, resp: &Response{Answer: "strong", Confidence: 0.9, Strategy: TypeAgentic}},
	}
	c := NewCombined(branches, DefaultTuning(), nil)

	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Answer != "strong" {
		t.Errorf("Answer = %q, want the higher-confidence branch", got.Answer)
	}
	if got.Strategy != TypeCombined {
		t.Errorf("Strategy = %s, want combined", got.Strategy)
	}
	if !strings.Contains(got.Note, "picked agentic") {
		t.Errorf("Note = %q, want winning branch recorded", got.Note)
	}
}

func TestCombinedPrefersProductsOnCloseCall(t *testing.T) {
	withProducts := &Response{
		Answer:     "with products",
		Confidence: 0.62,
		Strategy:   TypeHybrid,
		Products:   []search.SearchResult{{Document: search.Document{ID: "w1", Title: "Watch"}}},
	}
	withoutProducts := &Response{Answer: "a much longer answer without any products at all", Confidence: 0.7, Strategy: TypeAgentic}

	branches := []Strategy{
		&stubStrategy{typ: TypeAgentic, resp: withoutProducts},
		&stubStrategy{typ: TypeHybrid, resp: withProducts},
	}
	c := NewCombined(branches, DefaultTuning(), nil)

	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Answer != "with products" {
		t.Errorf("Answer = %q, want product-bearing branch to win a close call", got.Answer)
	}
}

func TestCombinedLongerAnswerBreaksTie(t *testing.T) {
	branches := []Strategy{
		&stubStrategy{typ: TypeHybrid, resp: &Response{Answer: "short", Confidence: 0.6, Strategy: TypeHybrid}},
		&stubStrategy{typ: TypeAgentic, resp: &Response{Answer: "a noticeably longer and fuller answer", Confidence: 0.6, Strategy: TypeAgentic}},
	}
	c := NewCombined(branches, DefaultTuning(), nil)

	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Answer != "a noticeably longer and fuller answer" {
		t.Errorf("Answer = %q, want the longer answer on a confidence tie", got.Answer)
	}
}

func TestCombinedSurvivesBranchFailure(t *testing.T) {
	branches := []Strategy{
		&stubStrategy{typ: TypeHybrid, err: errors.New("index unavailable")},
		&stubStrategy{typ: TypeAgentic, resp: &Response{Answer: "still here", Confidence: 0.7, Strategy: TypeAgentic}},
	}
	c := NewCombined(branches, DefaultTuning(), nil)

	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Answer != "still here" {
		t.Errorf("Answer = %q, want the surviving branch", got.Answer)
	}
}

func TestCombinedAllBranchesFailed(t *testing.T) {
	branches := []Strategy{
		&stubStrategy{typ: TypeHybrid, err: errors.New("boom")},
		&stubStrategy{typ: TypeAgentic, err: errors.New("boom")},
	}
	c := NewCombined(branches, DefaultTuning(), nil)

	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want apology confidence 0.3", got.Confidence)
	}
	if got.Answer == "" {
		t.Error("apology answer is empty")
	}
	if got.Strategy != TypeCombined {
		t.Errorf("Strategy = %s, want combined", got.Strategy)
	}
}

func TestCombinedSettlesDespiteHungBranch(t *testing.T) {
	tuning := DefaultTuning()
	tuning.BranchTimeout = 50 * time.Millisecond

	branches := []Strategy{
		&stubStrategy{typ: TypeHybrid, resp: &Response{Answer: "fast", Confidence: 0.7, Strategy: TypeHybrid}},
		&stubStrategy{typ: TypeAgentic, delay: 2 * time.Second, ignoreCtx: true,
			resp: &Response{Answer: "slow", Confidence: 0.99, Strategy: TypeAgentic}},
	}
	c := NewCombined(branches, tuning, nil)

	start := time.Now()
	got, err := c.Execute(context.Background(), &Turn{Query: "q"})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got.Answer != "fast" {
		t.Errorf("Answer = %q, want the branch that settled in time", got.Answer)
	}
	if elapsed > time.Second {
		t.Errorf("Execute took %v, want the hung branch cut off by its timeout", elapsed)
	}
}

func TestRetrieverFollowUpAugmentation(t *testing.T) {
	r := seededRetriever(t, DefaultTuning())

	session := activeSession()
	session.Preferences = map[string]string{"category": "watch", "gender": "men"}
	turn := &Turn{
		Query:    "under 500?",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, IsFollowUp: true},
		Session:  session,
	}

	q := r.Features(turn)
	if len(q.Categories) != 1 || q.Categories[0] != "watch" {
		t.Errorf("Categories = %v, want remembered category carried into the query", q.Categories)
	}
	if q.Gender != "men" {
		t.Errorf("Gender = %q, want remembered gender carried into the query", q.Gender)
	}
	if q.Budget == nil || q.Budget.Max != 500 {
		t.Errorf("Budget = %+v, want the budget parsed from the follow-up text", q.Budget)
	}

	products := r.Products(q)
	if len(products) == 0 {
		t.Fatal("no products for augmented follow-up query")
	}
	if products[0].Document.ID != "w1" {
		t.Errorf("top product = %s, want the men's watch in budget", products[0].Document.ID)
	}
}

func TestRetrieverCarriesStoredBudget(t *testing.T) {
	r := seededRetriever(t, DefaultTuning())

	session := activeSession()
	session.Preferences = map[string]string{"budget": "0-500"}
	turn := &Turn{
		Query:    "what about steel ones?",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, IsFollowUp: true},
		Session:  session,
	}

	q := r.Features(turn)
	if q.Budget == nil {
		t.Fatal("Budget = nil, want the stored session budget applied")
	}
	if q.Budget.Min != 0 || q.Budget.Max != 500 {
		t.Errorf("Budget = [%v, %v], want [0, 500]", q.Budget.Min, q.Budget.Max)
	}
}

func TestRetrieverOpenStoredBudget(t *testing.T) {
	b := parseStoredBudget("2000+")
	if b == nil {
		t.Fatal("parseStoredBudget(2000+) = nil")
	}
	if b.Min != 2000 || b.Bounded() {
		t.Errorf("parseStoredBudget(2000+) = [%v, %v], want [2000, +Inf)", b.Min, b.Max)
	}
}

func TestConversationalRefreshesOnNarrowing(t *testing.T) {
	r := seededRetriever(t, DefaultTuning())
	gen := response.NewGenerator(nil, nil)
	s := NewConversational(r, gen, nil)

	session := activeSession()
	session.Preferences = map[string]string{"category": "watch"}

	narrowing := &Turn{
		Query: "under 500?",
		Analysis: &analyzer.QueryAnalysis{
			Intent:     analyzer.IntentProductSearch,
			IsFollowUp: true,
			Entities:   map[string]string{"budget": "0-500"},
		},
		Session: session,
	}
	got, err := s.Execute(context.Background(), narrowing)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(got.Products) == 0 {
		t.Error("narrowing follow-up should refresh product results")
	}
	if got.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", got.Confidence)
	}

	chat := &Turn{
		Query:    "thanks, that was helpful",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentGeneralQuestion, IsFollowUp: true},
		Session:  session,
	}
	got, err = s.Execute(context.Background(), chat)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(got.Products) != 0 {
		t.Error("pure conversational follow-up should not run a catalog search")
	}
}

func TestHybridConfidenceTracksRelevance(t *testing.T) {
	r := seededRetriever(t, DefaultTuning())
	gen := response.NewGenerator(nil, nil)
	s := NewHybrid(r, gen, nil)

	strong, err := s.Execute(context.Background(), &Turn{
		Query:    "mens steel watch under 500",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, Confidence: 0.6},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if strong.Confidence <= 0.6 || strong.Confidence > 0.9 {
		t.Errorf("Confidence = %v, want within (0.6, 0.9] for a strong match", strong.Confidence)
	}
	if len(strong.Products) == 0 {
		t.Fatal("no products for a matching query")
	}
	if strong.Strategy != TypeHybrid {
		t.Errorf("Strategy = %s, want hybrid", strong.Strategy)
	}
}

func TestAgenticCollectsBothCorpora(t *testing.T) {
	r := seededRetriever(t, DefaultTuning())
	gen := response.NewGenerator(nil, nil)
	s := NewAgentic(r, gen, nil)

	got, err := s.Execute(context.Background(), &Turn{
		Query:    "I want a classic steel watch for men and I also wonder about returns",
		Analysis: &analyzer.QueryAnalysis{Intent: analyzer.IntentProductSearch, Confidence: 0.9},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(got.Products) == 0 {
		t.Error("agentic found no products")
	}
	if len(got.Sources) == 0 {
		t.Error("agentic found no knowledge sources")
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
	if got.Note == "" {
		t.Error("agentic should record its steps in the note")
	}
}
