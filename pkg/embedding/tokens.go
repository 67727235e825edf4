package embedding

import "strings"

// stopWords are dropped before vectorization and keyword extraction.
// Budget phrases ("under 500") keep working because price parsing runs on
// the raw query text, not on the token stream.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"what": {}, "which": {}, "who": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "by": {}, "for": {}, "with": {}, "from": {},
	"about": {}, "as": {}, "so": {}, "than": {}, "too": {}, "very": {},
	"can": {}, "will": {}, "just": {}, "some": {}, "any": {}, "all": {},
	"there": {}, "here": {}, "also": {}, "please": {},
}

// Tokenize lowercases text, strips punctuation, and drops stop-words and
// single-character fragments. Token order follows the source text.
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Map(keepAlnum, field)
		if len(token) < 2 {
			continue
		}
		if _, skip := stopWords[token]; skip {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func keepAlnum(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r
	}
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
