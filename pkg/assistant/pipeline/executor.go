package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/assistant/response"
	"ai-shopassist-be/pkg/assistant/strategy"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"

	"github.com/google/uuid"
)

// Executor orchestrates the per-turn pipeline
// Phase 1: Query Analysis → Phase 2: Strategy Selection → Phase 3: Execution → Phase 4: Finalize → Phase 5: Persist
type Executor struct {
	analyzer *analyzer.Analyzer
	selector *strategy.Selector
	sessions store.SessionStore
	logger   *log.Logger
}

func NewExecutor(
	queryAnalyzer *analyzer.Analyzer,
	selector *strategy.Selector,
	sessions store.SessionStore,
	logger *log.Logger,
) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		analyzer: queryAnalyzer,
		selector: selector,
		sessions: sessions,
		logger:   logger,
	}
}

// Result is the resolved turn handed back to the transport layer. The
// strategy's internal note stays in the logs and never appears here.
type Result struct {
	SessionID         string
	Answer            string
	Products          []search.SearchResult
	Sources           []search.SearchResult
	FollowUpQuestions []string
	Confidence        float64
	Strategy          strategy.Type
	Intent            analyzer.Intent
	Elapsed           time.Duration
}

// Execute runs one user turn end to end. An empty session id starts a new
// conversation; the minted id comes back in the result so the client can
// continue it. The only error Execute returns is context cancellation;
// every other failure degrades into an apologetic answer.
func (p *Executor) Execute(ctx context.Context, sessionID, query string) (*Result, error) {
	start := time.Now()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := p.sessions.Snapshot(sessionID)

	p.logger.Printf("[PIPELINE] Starting turn for session %s, query: %s", sessionID, truncate(query, 50))

	// ═══════════════════════════════════════════════════════════════
	// PHASE 1: QUERY ANALYSIS
	// ═══════════════════════════════════════════════════════════════
	p.logger.Printf("[PHASE 1] Analyzing query...")

	analysis := p.analyzer.Analyze(ctx, query, session)

	p.logger.Printf("[PHASE 1] Intent: %s (confidence %.2f, follow-up %v)",
		analysis.Intent, analysis.Confidence, analysis.IsFollowUp)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 2: STRATEGY SELECTION
	// ═══════════════════════════════════════════════════════════════
	turn := &strategy.Turn{
		Query:    query,
		Analysis: analysis,
		Session:  session,
	}
	selected, reason := p.selector.Select(turn)

	p.logger.Printf("[PHASE 2] Strategy: %s (%s)", selected.Type(), reason)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 3: STRATEGY EXECUTION
	// ═══════════════════════════════════════════════════════════════
	resp, err := selected.Execute(ctx, turn)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Printf("[PIPELINE] Turn cancelled: %v", ctx.Err())
			return nil, ctx.Err()
		}
		p.logger.Printf("[ERROR] Strategy %s failed: %v", selected.Type(), err)
		resp = &strategy.Response{
			Answer:     response.MsgGenerationFailed,
			Confidence: 0.3,
			Strategy:   selected.Type(),
			Note:       "strategy error: " + err.Error(),
		}
	}

	p.logger.Printf("[PHASE 3] Answer ready: confidence %.2f, %d products, %d sources",
		resp.Confidence, len(resp.Products), len(resp.Sources))
	if resp.Note != "" {
		p.logger.Printf("[PHASE 3] %s", resp.Note)
	}

	// ═══════════════════════════════════════════════════════════════
	// PHASE 4: FINALIZE
	// ═══════════════════════════════════════════════════════════════
	if strings.TrimSpace(resp.Answer) == "" {
		p.logger.Printf("[WARN] Empty answer after execution, substituting apology")
		resp.Answer = response.MsgGenerationFailed
	}

	// ═══════════════════════════════════════════════════════════════
	// PHASE 5: PERSIST SESSION
	// ═══════════════════════════════════════════════════════════════
	p.persist(sessionID, query, analysis, resp)

	elapsed := time.Since(start)
	p.logger.Printf("[PIPELINE] Turn complete in %s", elapsed)

	return &Result{
		SessionID:         sessionID,
		Answer:            resp.Answer,
		Products:          resp.Products,
		Sources:           resp.Sources,
		FollowUpQuestions: resp.FollowUpQuestions,
		Confidence:        resp.Confidence,
		Strategy:          resp.Strategy,
		Intent:            analysis.Intent,
		Elapsed:           elapsed,
	}, nil
}

func (p *Executor) persist(sessionID, query string, analysis *analyzer.QueryAnalysis, resp *strategy.Response) {
	now := time.Now()
	p.sessions.Append(sessionID, store.Message{
		Role:      store.RoleUser,
		Content:   query,
		Intent:    string(analysis.Intent),
		Timestamp: now,
	})
	p.sessions.Append(sessionID, store.Message{
		Role:      store.RoleAssistant,
		Content:   resp.Answer,
		Timestamp: now,
	})

	if len(analysis.ExplicitPreferences) > 0 {
		p.sessions.MergePreferences(sessionID, analysis.ExplicitPreferences)
	}

	if len(resp.Products) > 0 {
		refs := make([]store.ProductRef, 0, len(resp.Products))
		for _, r := range resp.Products {
			refs = append(refs, store.ProductRef{
				ProductID: r.Document.ID,
				Title:     r.Document.Title,
				Price:     r.Document.Price,
			})
		}
		p.sessions.RecordProducts(sessionID, refs)
	}

	p.updateFlow(sessionID, analysis)
}

// updateFlow keeps the guided product flow in step with the turn. Starting a
// flow resets it; anything else merges what this turn taught us into the
// existing state.
func (p *Executor) updateFlow(sessionID string, analysis *analyzer.QueryAnalysis) {
	if analysis.ShouldStartProductFlow {
		p.sessions.UpdateFlow(sessionID, store.FlowState{
			CurrentTopic:     analysis.ProductCategory,
			CollectedInfo:    copyMap(analysis.ExplicitPreferences),
			PendingQuestions: analysis.InformationNeeds,
		})
		return
	}

	if len(analysis.ExplicitPreferences) == 0 && analysis.ProductCategory == "" {
		return
	}

	current := p.sessions.Snapshot(sessionID)
	flow := store.FlowState{}
	if current != nil {
		flow = current.Flow
	}
	if analysis.ProductCategory != "" {
		flow.CurrentTopic = analysis.ProductCategory
	}
	if len(analysis.ExplicitPreferences) > 0 {
		if flow.CollectedInfo == nil {
			flow.CollectedInfo = make(map[string]string, len(analysis.ExplicitPreferences))
		}
		for k, v := range analysis.ExplicitPreferences {
			if v != "" {
				flow.CollectedInfo[k] = v
			}
		}
	}
	flow.PendingQuestions = pruneAnswered(flow.PendingQuestions, flow.CollectedInfo)
	p.sessions.UpdateFlow(sessionID, flow)
}

// pruneAnswered drops pending questions whose answer has been collected.
func pruneAnswered(pending []string, collected map[string]string) []string {
	if len(pending) == 0 {
		return pending
	}
	answered := map[string]string{
		"product category":    "category",
		"budget range":        "budget",
		"who the item is for": "gender",
	}
	kept := pending[:0]
	for _, q := range pending {
		if key, ok := answered[q]; ok && collected[key] != "" {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
