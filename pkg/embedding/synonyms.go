package embedding

import "sort"

// Canonical labels shared by the catalog, the scorer, and the analyzer.
const (
	CategoryWatch   = "watch"
	CategoryPerfume = "perfume"
	CategoryJewelry = "jewelry"

	GenderMen   = "men"
	GenderWomen = "women"
)

// CategoryTerms maps each canonical category to the surface forms that
// count as naming it. Keyword expansion treats every group as one
// equivalence class.
var CategoryTerms = map[string][]string{
	CategoryWatch:   {"watch", "watches", "timepiece", "chronograph"},
	CategoryPerfume: {"perfume", "fragrance", "cologne", "edp", "edt"},
	CategoryJewelry: {"jewelry", "jewellery", "necklace", "bracelet", "ring", "earring"},
}

// GenderTerms maps each gender tag to its surface forms. Matching is
// token-exact everywhere ("female" must never match "male").
var GenderTerms = map[string][]string{
	GenderWomen: {"women", "woman", "ladies", "lady", "female", "feminine"},
	GenderMen:   {"men", "man", "male", "gentlemen", "masculine"},
}

// termGroup resolves any surface form to its full synonym group.
var termGroup = buildTermGroups()

func buildTermGroups() map[string][]string {
	groups := make(map[string][]string)
	for _, terms := range CategoryTerms {
		for _, t := range terms {
			groups[t] = terms
		}
	}
	for _, terms := range GenderTerms {
		for _, t := range terms {
			groups[t] = terms
		}
	}
	return groups
}

// ExpandSynonyms returns the deduplicated union of the tokens and the
// synonym groups of every token that belongs to one, sorted for
// deterministic output.
func ExpandSynonyms(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		seen[token] = struct{}{}
		if group, ok := termGroup[token]; ok {
			for _, term := range group {
				seen[term] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for term := range seen {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// CategoryOf reports the canonical category a token names, if any.
func CategoryOf(token string) (string, bool) {
	for category, terms := range CategoryTerms {
		for _, t := range terms {
			if t == token {
				return category, true
			}
		}
	}
	return "", false
}

// GenderOf reports the gender tag a token names, if any.
func GenderOf(token string) (string, bool) {
	for gender, terms := range GenderTerms {
		for _, t := range terms {
			if t == token {
				return gender, true
			}
		}
	}
	return "", false
}
