package embedding

// Dim is the fixed dimensionality of every stored and query vector.
// The pgvector column type and the heuristic indexer both depend on it,
// so changing it requires a full re-index.
const Dim = 100

// Features is the indexed representation of a piece of text: a fixed-length
// unit vector for cosine ranking plus a deduplicated, synonym-expanded
// keyword set for lexical overlap.
type Features struct {
	Embedding []float32
	Keywords  []string
}

// Indexer turns raw text into Features. Implementations must be pure and
// deterministic for identical input, must never return an error, and must
// degrade to a zero vector with no keywords when the text carries no signal.
type Indexer interface {
	Index(text string) Features
}

// ProviderIndexer swaps the heuristic vector for one produced by a remote
// embedding Provider while keeping the lexical keyword pipeline. Provider
// failures fall back to the heuristic vector so callers never see an error.
type ProviderIndexer struct {
	provider Provider
	fallback Indexer
}

func NewProviderIndexer(provider Provider) Indexer {
	return &ProviderIndexer{
		provider: provider,
		fallback: NewHeuristicIndexer(),
	}
}

func (p *ProviderIndexer) Index(text string) Features {
	base := p.fallback.Index(text)
	if p.provider == nil {
		return base
	}

	vec, err := p.provider.Embed(text)
	if err != nil || len(vec) == 0 {
		return base
	}

	base.Embedding = fitDimension(vec, Dim)
	return base
}

// fitDimension truncates or zero-pads a provider vector to the fixed
// dimensionality and re-normalizes, so mixed-provider indexes stay
// comparable under cosine similarity.
func fitDimension(vec []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, vec)
	return normalizeVector(out)
}
