//go:build ignore

package main

import (
	"fmt"
	"math"

	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/embedding/jina"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()

	// 1. Initialize Indexers
	fmt.Println("--- Initializing Indexers ---")
	heuristic := embedding.NewHeuristicIndexer()
	remote := embedding.NewProviderIndexer(jina.NewJinaProvider(cfg.Keys.Jina))

	// 2. Define Test Cases
	text1 := "automatic dive watch with steel bracelet and 300m water resistance" // Original
	text2 := "mens diver timepiece, metal strap, rated for deep water"            // Semantically similar
	text3 := "floral eau de parfum with jasmine and citrus notes"                 // Completely different

	fmt.Println("\n--- Generating Features ---")

	generate := func(name string, idx embedding.Indexer) ([]float32, []float32, []float32) {
		fmt.Printf("\n[%s] Generating...\n", name)
		f1 := idx.Index(text1)
		f2 := idx.Index(text2)
		f3 := idx.Index(text3)
		fmt.Printf("[%s] Dimensions: %d, Keywords (Text 1): %d\n", name, len(f1.Embedding), len(f1.Keywords))
		return f1.Embedding, f2.Embedding, f3.Embedding
	}

	// 3. Run Heuristic
	h1, h2, h3 := generate("HEURISTIC", heuristic)

	// 4. Run Remote Provider
	r1, r2, r3 := generate("JINA", remote)

	// 5. Compare Similarity
	fmt.Println("\n--- Semantic Similarity Comparison ---")
	fmt.Println("(Higher is better, 1.0 = identical)")

	fmt.Printf("\n[HEURISTIC]\n")
	fmt.Printf("Similarity (Text 1 vs Text 2 - Similar): %.4f\n", CosineSimilarity(h1, h2))
	fmt.Printf("Similarity (Text 1 vs Text 3 - Different): %.4f\n", CosineSimilarity(h1, h3))

	fmt.Printf("\n[JINA]\n")
	fmt.Printf("Similarity (Text 1 vs Text 2 - Similar): %.4f\n", CosineSimilarity(r1, r2))
	fmt.Printf("Similarity (Text 1 vs Text 3 - Different): %.4f\n", CosineSimilarity(r1, r3))

	fmt.Println("\n--- Conclusion ---")
	fmt.Println("Both indexers should score the two watch descriptions closer than watch vs perfume.")
}
