package embedding

// Provider generates a raw embedding vector for text using a remote model.
// ProviderIndexer fits the result to Dim, so backends with any native
// dimensionality can be plugged in without re-indexing concerns leaking out.
type Provider interface {
	Embed(text string) ([]float32, error)
}
