package search

import (
	"math"

	"ai-shopassist-be/pkg/embedding"
)

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
// Mismatched or empty vectors score zero rather than erroring, so a single
// badly stored document can never fail a whole query.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Jaccard returns the set overlap |a∩b| / |a∪b|.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Score combines semantic and keyword similarity with the domain boosts and
// penalties into one number. It is a pure function: no locks, no state, safe
// from any goroutine. The second return value reports which similarity
// component contributed.
func Score(q QueryFeatures, doc Document, w Weights) (float64, SearchType) {
	semantic := Cosine(q.Embedding, doc.Embedding)
	keyword := Jaccard(q.Keywords, toSet(doc.Keywords))
	score := w.Semantic*semantic + w.Keyword*keyword

	titleTokens := toSet(embedding.Tokenize(doc.Title))
	contentTokens := toSet(embedding.Tokenize(doc.Content))

	// Best single category boost. Summing across several named categories
	// would push past the documented score bound.
	var categoryBoost float64
	for _, category := range q.Categories {
		var boost float64
		if doc.Category == category || namesCategory(category, contentTokens) {
			boost += w.CategoryContent
		}
		if namesCategory(category, titleTokens) {
			boost += w.CategoryTitle
		}
		if boost > categoryBoost {
			categoryBoost = boost
		}
	}
	score += categoryBoost

	// The mismatch penalty only applies when the query is unambiguous about
	// what it wants. Tagged documents of another category are penalized
	// harder than untagged ones that merely never mention it.
	if sole, ok := q.SoleCategory(); ok {
		switch {
		case doc.Category != "" && doc.Category != sole:
			score -= w.CategoryMissHard
		case doc.Category == "" && !namesCategory(sole, titleTokens) && !namesCategory(sole, contentTokens):
			score -= w.CategoryMissSoft
		}
	}

	if q.Gender != "" {
		if doc.Gender == q.Gender || namesGender(q.Gender, titleTokens) || namesGender(q.Gender, contentTokens) {
			score += w.Gender
		}
	}

	if doc.Brand != "" {
		brandTokens := embedding.Tokenize(doc.Brand)
		if len(brandTokens) > 0 && containsAll(toSet(q.Tokens), brandTokens) {
			score += w.Brand
		}
	}

	if q.Budget != nil && doc.Price > 0 {
		if q.Budget.In(doc.Price) {
			score += w.BudgetFit * budgetProximity(q.Budget, doc.Price)
		} else {
			score -= w.BudgetMiss
		}
	}

	return score, searchTypeOf(semantic, keyword)
}

// budgetProximity scales from 1 at the range midpoint down to 0 at either
// bound. Open-ended ranges have no midpoint and earn no fit boost.
func budgetProximity(budget *BudgetRange, price float64) float64 {
	if !budget.Bounded() {
		return 0
	}
	half := (budget.Max - budget.Min) / 2
	if half <= 0 {
		return 1
	}
	return clamp01(1 - math.Abs(price-budget.Midpoint())/half)
}

func searchTypeOf(semantic, keyword float64) SearchType {
	switch {
	case semantic > 0 && keyword > 0:
		return SearchTypeHybrid
	case keyword > 0:
		return SearchTypeKeyword
	case semantic > 0:
		return SearchTypeSemantic
	default:
		return SearchTypeHybrid
	}
}

// namesCategory reports whether a token set contains any surface form of the
// canonical category.
func namesCategory(category string, tokens map[string]struct{}) bool {
	for _, term := range embedding.CategoryTerms[category] {
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

func namesGender(gender string, tokens map[string]struct{}) bool {
	for _, term := range embedding.GenderTerms[gender] {
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

func containsAll(set map[string]struct{}, terms []string) bool {
	for _, term := range terms {
		if _, ok := set[term]; !ok {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
