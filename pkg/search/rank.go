package search

import (
	"sort"

	"ai-shopassist-be/pkg/embedding"
)

// Rank orders scored results and applies the post-ranking policies in fixed
// order: budget narrowing, category narrowing, deduplication, then the limit
// cut. The sort is stable, so equal scores keep their index order.
func Rank(results []SearchResult, q QueryFeatures, limit int) []SearchResult {
	if limit <= 0 {
		limit = 5
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	results = narrowBudget(results, q, limit)
	results = narrowCategory(results, q)
	results = dedupe(results)

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// narrowBudget keeps only in-range results, but only when enough of them
// exist to fill a useful answer. Otherwise the unfiltered ranking stands and
// the out-of-budget penalty alone decides.
func narrowBudget(results []SearchResult, q QueryFeatures, limit int) []SearchResult {
	if q.Budget == nil {
		return results
	}
	need := limit
	if need > 3 {
		need = 3
	}

	inRange := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Document.Price > 0 && q.Budget.In(r.Document.Price) {
			inRange = append(inRange, r)
		}
	}
	if len(inRange) >= need {
		return inRange
	}
	return results
}

// narrowCategory restricts results to the one category the query names,
// provided at least one result actually belongs to it.
func narrowCategory(results []SearchResult, q QueryFeatures) []SearchResult {
	sole, ok := q.SoleCategory()
	if !ok {
		return results
	}

	matching := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if documentInCategory(&r.Document, sole) {
			matching = append(matching, r)
		}
	}
	if len(matching) > 0 {
		return matching
	}
	return results
}

// dedupe keeps the first, and because of the descending sort the highest
// scoring, result per identity key.
func dedupe(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		key := r.Document.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func documentInCategory(doc *Document, category string) bool {
	if doc.Category == category {
		return true
	}
	if doc.Category != "" {
		return false
	}
	if namesCategory(category, toSet(embedding.Tokenize(doc.Title))) {
		return true
	}
	return namesCategory(category, toSet(embedding.Tokenize(doc.Content)))
}
