package strategy

import (
	"log"
	"math"
	"strings"

	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"
)

// Retriever runs catalog and knowledge searches on behalf of strategies, so
// every strategy applies the same query enrichment and limits.
type Retriever struct {
	index   *search.Index
	indexer embedding.Indexer
	tuning  Tuning
	logger  *log.Logger
}

func NewRetriever(index *search.Index, indexer embedding.Indexer, tuning Tuning, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = log.Default()
	}
	return &Retriever{
		index:   index,
		indexer: indexer,
		tuning:  tuning,
		logger:  logger,
	}
}

// Features builds the query features for a turn. Follow-up turns inherit the
// session's category, gender and budget so "under 300?" still searches
// watches when watches were the topic.
func (r *Retriever) Features(turn *Turn) search.QueryFeatures {
	text := r.searchText(turn)
	q := search.BuildQuery(text, r.indexer)

	if q.Budget == nil && turn.IsFollowUp() && turn.Session != nil {
		if pref := turn.Session.Preferences["budget"]; pref != "" {
			q.Budget = parseStoredBudget(pref)
		}
	}
	return q
}

// Products searches the catalog corpus.
func (r *Retriever) Products(q search.QueryFeatures) []search.SearchResult {
	return r.index.Search(q, search.SearchOptions{
		Kind:    search.KindProduct,
		Limit:   r.tuning.ProductLimit,
		Weights: r.tuning.ProductWeights,
	})
}

// Knowledge searches the knowledge base corpus.
func (r *Retriever) Knowledge(q search.QueryFeatures) []search.SearchResult {
	return r.index.Search(q, search.SearchOptions{
		Kind:    search.KindKnowledge,
		Limit:   r.tuning.KnowledgeLimit,
		Weights: r.tuning.KnowledgeWeights,
	})
}

// RelevanceBonus converts the top product score into the hybrid strategy's
// confidence bonus, capped at 0.3.
func (r *Retriever) RelevanceBonus(products []search.SearchResult) float64 {
	if len(products) == 0 {
		return 0
	}
	max := r.tuning.ProductWeights.MaxScore()
	if max <= 0 {
		return 0
	}
	return math.Min(0.3, products[0].Score/max*0.3)
}

// searchText augments a follow-up query with remembered context terms the
// user did not repeat.
func (r *Retriever) searchText(turn *Turn) string {
	if !turn.IsFollowUp() || turn.Session == nil {
		return turn.Query
	}

	parts := []string{turn.Query}
	lower := strings.ToLower(turn.Query)
	for _, key := range []string{"category", "gender"} {
		if v := turn.Session.Preferences[key]; v != "" && !strings.Contains(lower, strings.ToLower(v)) {
			parts = append(parts, v)
		}
	}
	if topic := turn.Session.Flow.CurrentTopic; topic != "" && !strings.Contains(lower, strings.ToLower(topic)) {
		parts = append(parts, topic)
	}

	if len(parts) == 1 {
		return turn.Query
	}
	text := strings.Join(parts, " ")
	r.logger.Printf("[RETRIEVE] follow-up query augmented to %q", text)
	return text
}

// parseStoredBudget reads the "min-max" / "min+" format session preferences
// use for budgets.
func parseStoredBudget(s string) *search.BudgetRange {
	if strings.HasSuffix(s, "+") {
		if b := search.ParseBudget("over " + strings.TrimSuffix(s, "+")); b != nil {
			return b
		}
		return nil
	}
	return search.ParseBudget(s)
}
