package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/store"
)

// QueryAnalysis is the structured understanding of one user turn. It drives
// strategy selection and retrieval, so every field must be safe to read even
// when the model path failed.
type QueryAnalysis struct {
	Intent                 Intent            `json:"intent"`
	Entities               map[string]string `json:"entities"`
	IsFollowUp             bool              `json:"is_follow_up"`
	Confidence             float64           `json:"confidence"`
	InformationNeeds       []string          `json:"information_needs"`
	ProductCategory        string            `json:"product_category"`
	ExplicitPreferences    map[string]string `json:"explicit_preferences"`
	ShouldStartProductFlow bool              `json:"should_start_product_flow"`
	Reasoning              string            `json:"reasoning"`
}

// Analyzer classifies user queries with a language model and falls back to
// the rule table when the model is unreachable or returns something
// unparseable. Analyze never returns an error: the caller always gets a
// usable analysis.
type Analyzer struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewAnalyzer(provider llm.LLMProvider, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		provider: provider,
		logger:   logger,
	}
}

// Analyze produces a QueryAnalysis for one turn. The session gives the model
// conversational context; nil means a fresh conversation.
func (a *Analyzer) Analyze(ctx context.Context, query string, session *store.Session) *QueryAnalysis {
	fallback := RuleBasedAnalysis(query, session)

	if a.provider == nil {
		return a.finalize(fallback, session)
	}

	prompt := a.buildPrompt(query, session)
	raw, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithJSONOutput())
	if err != nil {
		a.logger.Printf("[ERROR] Query analysis call failed: %v, using rule-based fallback", err)
		return a.finalize(fallback, session)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		a.logger.Printf("[WARN] Could not parse analyzer output: %v, using rule-based fallback", err)
		return a.finalize(fallback, session)
	}

	mergeDeterministic(analysis, fallback)
	return a.finalize(analysis, session)
}

// finalize applies the invariants no analysis may violate, model-produced or
// not. A follow-up inside an ongoing conversation must NEVER restart the
// product flow, whatever the model claimed.
func (a *Analyzer) finalize(analysis *QueryAnalysis, session *store.Session) *QueryAnalysis {
	if analysis.Entities == nil {
		analysis.Entities = map[string]string{}
	}
	if analysis.ExplicitPreferences == nil {
		analysis.ExplicitPreferences = map[string]string{}
	}
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	if analysis.IsFollowUp && session != nil && session.HasContext() {
		analysis.ShouldStartProductFlow = false
	}

	a.logger.Printf("[ANALYZE] intent=%s confidence=%.2f follow_up=%v start_flow=%v category=%q",
		analysis.Intent, analysis.Confidence, analysis.IsFollowUp, analysis.ShouldStartProductFlow, analysis.ProductCategory)
	return analysis
}

// mergeDeterministic backfills the model's analysis with entities the regex
// extractors found. The model may phrase things loosely but a budget the
// user typed is never allowed to get lost.
func mergeDeterministic(analysis, fallback *QueryAnalysis) {
	if analysis.Entities == nil {
		analysis.Entities = map[string]string{}
	}
	if analysis.ExplicitPreferences == nil {
		analysis.ExplicitPreferences = map[string]string{}
	}
	for k, v := range fallback.Entities {
		if _, ok := analysis.Entities[k]; !ok {
			analysis.Entities[k] = v
		}
	}
	for k, v := range fallback.ExplicitPreferences {
		if _, ok := analysis.ExplicitPreferences[k]; !ok {
			analysis.ExplicitPreferences[k] = v
		}
	}
	if analysis.ProductCategory == "" {
		analysis.ProductCategory = fallback.ProductCategory
	}
}

func parseAnalysis(raw string) (*QueryAnalysis, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var analysis QueryAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	intent, ok := ParseIntent(string(analysis.Intent))
	if !ok && analysis.Intent != "" {
		analysis.Reasoning = strings.TrimSpace("Normalized unknown intent. " + analysis.Reasoning)
	}
	analysis.Intent = intent

	// Surface forms like "watches" collapse onto the canonical category.
	// Topics outside the catalog pass through untouched.
	if category, ok := embedding.CategoryOf(strings.ToLower(strings.TrimSpace(analysis.ProductCategory))); ok {
		analysis.ProductCategory = category
	}
	return &analysis, nil
}

// extractJSON pulls the outermost JSON object out of a model answer that may
// wrap it in prose or code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func (a *Analyzer) buildPrompt(query string, session *store.Session) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You are the query analyzer for a boutique shopping assistant selling watches, perfume and jewelry.\n")
	b.WriteString("Your ONLY job is to classify the user's query and extract structured fields.\n")
	b.WriteString("Do NOT answer the query. Respond with a single JSON object and nothing else.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<session_state>\n")
	writeSessionState(&b, session)
	b.WriteString("</session_state>\n\n")

	b.WriteString("<user_query>\n")
	b.WriteString(query)
	b.WriteString("\n</user_query>\n\n")

	b.WriteString("<intent_definitions>\n")
	b.WriteString("- greeting: salutations and small talk with no request.\n")
	b.WriteString("- product_search: the user wants to see specific products (\"show me gold watches\").\n")
	b.WriteString("- recommendation: the user wants advice or a suggestion (\"what should I get my wife\").\n")
	b.WriteString("- price_query: the user asks about price, cost or budget fit.\n")
	b.WriteString("- order_tracking: the user asks about an existing order or delivery.\n")
	b.WriteString("- general_question: anything else, including store policy and product knowledge questions.\n")
	b.WriteString("</intent_definitions>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString(`{
  "intent": "one of: greeting, product_search, recommendation, price_query, order_tracking, general_question",
  "entities": {"category": "...", "gender": "...", "budget": "...", "brand": "..."},
  "is_follow_up": false,
  "confidence": 0.0,
  "information_needs": ["..."],
  "product_category": "watch, perfume, jewelry or empty",
  "explicit_preferences": {"budget": "...", "gender": "..."},
  "should_start_product_flow": false,
  "reasoning": "one short sentence"
}`)
	b.WriteString("\n</output_format>\n")

	return b.String()
}

func writeSessionState(b *strings.Builder, session *store.Session) {
	if session == nil || !session.HasContext() {
		b.WriteString("INITIAL_STATE: this is the first turn of the conversation.\n")
		return
	}

	b.WriteString(fmt.Sprintf("ACTIVE_CONVERSATION: %d prior messages.\n", len(session.History)))
	b.WriteString("Recent turns:\n")
	for _, msg := range session.LastMessages(4) {
		content := msg.Content
		if len(content) > 160 {
			content = content[:160] + "..."
		}
		b.WriteString(fmt.Sprintf("  [%s] %s\n", msg.Role, content))
	}

	if len(session.Preferences) > 0 {
		b.WriteString("KNOWN_PREFERENCES:\n")
		for k, v := range session.Preferences {
			b.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	if len(session.RecentProducts) > 0 {
		b.WriteString("RECENTLY_SHOWN_PRODUCTS:\n")
		for _, p := range session.RecentProducts {
			b.WriteString(fmt.Sprintf("  %s ($%.2f)\n", p.Title, p.Price))
		}
	}

	if session.Flow.CurrentTopic != "" {
		b.WriteString(fmt.Sprintf("CURRENT_TOPIC: %s\n", session.Flow.CurrentTopic))
	}
}
