package search

import (
	"ai-shopassist-be/pkg/embedding"
)

// QueryFeatures is everything the scorer needs from a query, computed once
// per search so scoring stays a pure function over (query, document).
type QueryFeatures struct {
	Raw        string
	Tokens     []string            // filtered tokens, original order, no synonym expansion
	Keywords   map[string]struct{} // synonym-expanded keyword set
	Embedding  []float32
	Categories []string // canonical categories the query names, deduplicated
	Gender     string   // men or women when the query names one
	Budget     *BudgetRange
}

// BuildQuery analyzes raw query text with the given indexer. Detection is
// token-exact throughout, so "female" never counts as naming "male".
func BuildQuery(text string, indexer embedding.Indexer) QueryFeatures {
	feats := indexer.Index(text)
	tokens := embedding.Tokenize(text)

	q := QueryFeatures{
		Raw:       text,
		Tokens:    tokens,
		Keywords:  toSet(feats.Keywords),
		Embedding: feats.Embedding,
		Budget:    ParseBudget(text),
	}

	seenCategory := make(map[string]struct{})
	for _, token := range tokens {
		if category, ok := embedding.CategoryOf(token); ok {
			if _, dup := seenCategory[category]; !dup {
				seenCategory[category] = struct{}{}
				q.Categories = append(q.Categories, category)
			}
		}
		if gender, ok := embedding.GenderOf(token); ok && q.Gender == "" {
			q.Gender = gender
		}
	}

	return q
}

// SoleCategory returns the named category when the query names exactly one.
func (q *QueryFeatures) SoleCategory() (string, bool) {
	if len(q.Categories) == 1 {
		return q.Categories[0], true
	}
	return "", false
}

func toSet(terms []string) map[string]struct{} {
	if len(terms) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}
