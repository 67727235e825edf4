package main

import (
	"fmt"

	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"
)

// Fixed catalog so every run is reproducible without a database.
var products = []struct {
	id       string
	title    string
	desc     string
	category string
	gender   string
	brand    string
	price    float64
}{
	{"p1", "Chrono Steel 42", "Automatic chronograph watch with steel bracelet", "watch", "men", "Meridian", 1890},
	{"p2", "Petite Lune 28", "Elegant quartz watch with mother of pearl dial", "watch", "women", "Meridian", 420},
	{"p3", "Noir Absolu", "Intense oriental perfume with oud and amber", "perfume", "men", "Maison Verde", 150},
	{"p4", "Jardin Blanc", "Fresh floral eau de parfum with jasmine", "perfume", "women", "Maison Verde", 95},
	{"p5", "Eternity Band", "Diamond eternity ring in white gold", "jewelry", "women", "Aurelia", 2400},
}

const careGuide = "Automatic watches should be serviced every five years. " +
	"Keep the watch away from strong magnets and store it in a dry place. " +
	"A quartz watch only needs a battery change every two to three years."

func main() {
	fmt.Println("=== Offline Retrieval Check ===")
	fmt.Println("seeding index...")

	indexer := embedding.NewHeuristicIndexer()
	idx := search.NewIndex()

	for _, p := range products {
		text := p.title + " " + p.desc + " " + p.category + " " + p.brand
		feats := indexer.Index(text)
		idx.Upsert(search.Document{
			ID:        p.id,
			Kind:      search.KindProduct,
			Title:     p.title,
			Content:   p.desc,
			Category:  p.category,
			Gender:    p.gender,
			Brand:     p.brand,
			Price:     p.price,
			Embedding: feats.Embedding,
			Keywords:  feats.Keywords,
			Active:    true,
		})
	}

	feats := indexer.Index(careGuide)
	idx.Upsert(search.Document{
		ID:        "doc1#0",
		ParentID:  "doc1",
		Kind:      search.KindKnowledge,
		Title:     "Watch Care Guide",
		Content:   careGuide,
		Category:  "watch",
		Embedding: feats.Embedding,
		Keywords:  feats.Keywords,
		Active:    true,
	})

	fmt.Printf("indexed: %d products, %d knowledge chunks\n\n",
		idx.Count(search.KindProduct), idx.Count(search.KindKnowledge))

	// Case 1: category plus gender intent should surface the women's watch
	results := run(idx, indexer, "an elegant ladies watch", search.KindProduct)
	if len(results) > 0 && results[0].Document.ID == "p2" {
		fmt.Println("✅ Women's watch ranked first for gendered watch query")
	} else {
		fmt.Printf("❌ Expected p2 first, got %s\n", topID(results))
	}

	// Case 2: budget cap must push expensive items out
	results = run(idx, indexer, "watch under 500 euros", search.KindProduct)
	over := 0
	for _, r := range results {
		if r.Document.Price > 500 {
			over++
		}
	}
	if len(results) > 0 && over == 0 {
		fmt.Println("✅ Budget filter kept every result under the cap")
	} else {
		fmt.Printf("❌ %d of %d results exceed the budget\n", over, len(results))
	}

	// Case 3: brand token must beat unrelated categories
	results = run(idx, indexer, "something from maison verde", search.KindProduct)
	if len(results) > 0 && results[0].Document.Brand == "Maison Verde" {
		fmt.Println("✅ Brand query surfaced the brand's products")
	} else {
		fmt.Printf("❌ Expected a Maison Verde product first, got %s\n", topID(results))
	}

	// Case 4: knowledge corpus answers service questions
	results = run(idx, indexer, "how often should an automatic watch be serviced", search.KindKnowledge)
	if len(results) > 0 && results[0].Document.ParentID == "doc1" {
		fmt.Println("✅ Care guide chunk retrieved for service question")
	} else {
		fmt.Printf("❌ Expected doc1 chunk, got %s\n", topID(results))
	}

	// Case 5: a second chunk of the same document must collapse at ranking
	feats = indexer.Index("Store quartz watches with the crown pushed in. " + careGuide)
	idx.Upsert(search.Document{
		ID:        "doc1#1",
		ParentID:  "doc1",
		Kind:      search.KindKnowledge,
		Title:     "Watch Care Guide",
		Content:   "Store quartz watches with the crown pushed in. " + careGuide,
		Category:  "watch",
		Embedding: feats.Embedding,
		Keywords:  feats.Keywords,
		Active:    true,
	})
	results = run(idx, indexer, "quartz watch care", search.KindKnowledge)
	parents := map[string]int{}
	for _, r := range results {
		parents[r.Document.ParentID]++
	}
	if parents["doc1"] == 1 {
		fmt.Println("✅ Sibling chunks deduplicated onto one result")
	} else {
		fmt.Printf("❌ Parent doc1 appeared %d times\n", parents["doc1"])
	}

	fmt.Println("\n=== Check Complete ===")
}

func run(idx *search.Index, indexer embedding.Indexer, text string, kind search.Kind) []search.SearchResult {
	q := search.BuildQuery(text, indexer)
	weights := search.DefaultProductWeights()
	if kind == search.KindKnowledge {
		weights = search.DefaultKnowledgeWeights()
	}
	results := idx.Search(q, search.SearchOptions{Kind: kind, Limit: 5, Weights: weights})

	fmt.Printf("QUERY: %q\n", text)
	for i, r := range results {
		fmt.Printf("   %d. [%.3f %s] %s\n", i+1, r.Score, r.SearchType, r.Document.Title)
	}
	return results
}

func topID(results []search.SearchResult) string {
	if len(results) == 0 {
		return "(empty)"
	}
	return results[0].Document.ID
}
