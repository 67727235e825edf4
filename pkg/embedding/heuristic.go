package embedding

import "math"

// HeuristicIndexer derives a pseudo-embedding from character codes instead of
// a trained model. It is a stand-in with the same shape as a real embedding:
// swap in a ProviderIndexer and nothing downstream changes.
type HeuristicIndexer struct{}

func NewHeuristicIndexer() Indexer {
	return &HeuristicIndexer{}
}

// Index vectorizes text deterministically: each distinct token contributes a
// character-code value weighted by log(frequency+1), laid out in first
// appearance order, truncated or zero-padded to Dim, then L2-normalized.
// Empty or all-stop-word text yields a zero vector and no keywords.
func (h *HeuristicIndexer) Index(text string) Features {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return Features{Embedding: make([]float32, Dim)}
	}

	// Distinct tokens in first-appearance order. Ranging over the count map
	// here would make the accumulation order, and so the float result,
	// nondeterministic.
	counts := make(map[string]int, len(tokens))
	distinct := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if counts[token] == 0 {
			distinct = append(distinct, token)
		}
		counts[token]++
	}

	vec := make([]float32, Dim)
	for i, token := range distinct {
		if i >= Dim {
			break
		}
		var codes float64
		for _, r := range token {
			codes += float64(r)
		}
		vec[i] = float32(codes * math.Log(float64(counts[token])+1))
	}

	return Features{
		Embedding: normalizeVector(vec),
		Keywords:  ExpandSynonyms(tokens),
	}
}

// normalizeVector scales a vector to unit length. Cosine ranking and the
// pgvector distance operator both assume magnitude 1.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
