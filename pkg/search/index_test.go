package search

import (
	"fmt"
	"sync"
	"testing"
)

func seedCatalog() *Index {
	idx := NewIndex()
	idx.Replace([]Document{
		testDoc("w1", KindProduct, "Classic Men Steel Watch", "timeless men steel watch with sapphire glass", "watch", "men", "Meridian", 450),
		testDoc("w2", KindProduct, "Rose Gold Ladies Watch", "elegant rose gold watch for women", "watch", "women", "Meridian", 620),
		testDoc("w3", KindProduct, "Sport Chronograph", "rugged chronograph with rubber strap", "watch", "men", "Vettore", 380),
		testDoc("w4", KindProduct, "Heritage Gold Watch", "hand finished gold dress watch", "watch", "men", "Meridian", 2400),
		testDoc("p1", KindProduct, "Oud Noir", "bold oud cologne for men", "perfume", "men", "Maison Lys", 150),
		testDoc("p2", KindProduct, "Rose Petal Eau de Parfum", "floral edp for women", "perfume", "women", "Maison Lys", 130),
		testDoc("j1", KindProduct, "Silver Charm Bracelet", "sterling silver bracelet with charms", "jewelry", "women", "Aurelle", 210),
	})
	return idx
}

func TestSearchScenarioMenWatchesUnderBudget(t *testing.T) {
	idx := seedCatalog()
	q := BuildQuery("men watches under 500", testIndexer)

	results := idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 5, Weights: DefaultProductWeights()})
	if len(results) == 0 {
		t.Fatal("no results for a query with qualifying products")
	}

	if results[0].Document.ID != "w1" && results[0].Document.ID != "w3" {
		t.Errorf("top result = %s, want a men's watch in budget", results[0].Document.ID)
	}

	// A perfume with overlapping keywords must not outrank the watches
	for i, r := range results {
		if r.Document.Category == "perfume" && i == 0 {
			t.Errorf("perfume %s ranked first for a watch query", r.Document.ID)
		}
	}
}

func TestSearchBudgetNarrowing(t *testing.T) {
	idx := seedCatalog()
	q := BuildQuery("watches under 700", testIndexer)

	results := idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 5, Weights: DefaultProductWeights()})
	if len(results) < 3 {
		t.Fatalf("expected at least 3 in-budget watches, got %d", len(results))
	}
	for _, r := range results {
		if r.Document.Price > 700 {
			t.Errorf("result %s priced %v escaped budget narrowing", r.Document.ID, r.Document.Price)
		}
	}
}

func TestSearchBudgetNarrowingNotEnoughInRange(t *testing.T) {
	idx := NewIndex()
	idx.Replace([]Document{
		testDoc("w1", KindProduct, "Classic Men Steel Watch", "steel watch", "watch", "men", "", 450),
		testDoc("w2", KindProduct, "Heritage Gold Watch", "gold dress watch", "watch", "men", "", 2400),
	})

	// Only one watch is in range and min(limit,3) is 3, so the unfiltered
	// ranking is kept and the out-of-range watch may still appear.
	q := BuildQuery("men watches under 500", testIndexer)
	results := idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 5, Weights: DefaultProductWeights()})

	found := false
	for _, r := range results {
		if r.Document.ID == "w1" {
			found = true
		}
	}
	if !found {
		t.Error("in-budget watch missing from results")
	}
}

func TestSearchCategoryNarrowing(t *testing.T) {
	idx := seedCatalog()
	q := BuildQuery("perfume for her", testIndexer)

	results := idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 5, Weights: DefaultProductWeights()})
	if len(results) == 0 {
		t.Fatal("no results")
	}
	for _, r := range results {
		if r.Document.Category != "perfume" {
			t.Errorf("result %s (%s) survived category narrowing", r.Document.ID, r.Document.Category)
		}
	}
}

func TestSearchDedupKnowledgeChunks(t *testing.T) {
	idx := NewIndex()

	// Three chunks of the same source document plus one standalone
	chunk := func(id, parent, content string) Document {
		d := testDoc(id, KindKnowledge, "Shipping Policy", content, "", "", "", 0)
		d.ParentID = parent
		return d
	}
	idx.Replace([]Document{
		chunk("k1#0", "k1", "standard shipping takes three to five business days"),
		chunk("k1#1", "k1", "express shipping is available for watches and jewelry"),
		chunk("k1#2", "k1", "shipping is free for orders over 100"),
		testDoc("k2", KindKnowledge, "Returns", "returns are accepted within thirty days", "", "", "", 0),
	})

	q := BuildQuery("how long does shipping take", testIndexer)
	results := idx.Search(q, SearchOptions{Kind: KindKnowledge, Limit: 5, Weights: DefaultKnowledgeWeights()})

	seen := make(map[string]int)
	for _, r := range results {
		seen[r.Document.IdentityKey()]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("identity key %q appears %d times", key, n)
		}
	}
}

func TestSearchNoDuplicateIdentityKeys(t *testing.T) {
	idx := seedCatalog()
	q := BuildQuery("gift ideas", testIndexer)

	results := idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 10, Weights: DefaultProductWeights()})
	seen := make(map[string]struct{})
	for _, r := range results {
		key := r.Document.IdentityKey()
		if _, dup := seen[key]; dup {
			t.Errorf("duplicate identity key %q in results", key)
		}
		seen[key] = struct{}{}
	}
}

func TestRankStableOnTies(t *testing.T) {
	a := Document{ID: "a", Kind: KindProduct, Active: true}
	b := Document{ID: "b", Kind: KindProduct, Active: true}
	c := Document{ID: "c", Kind: KindProduct, Active: true}

	results := []SearchResult{
		{Document: a, Score: 0.5},
		{Document: b, Score: 0.5},
		{Document: c, Score: 0.9},
	}

	ranked := Rank(results, QueryFeatures{}, 10)
	if len(ranked) != 3 {
		t.Fatalf("len = %d, want 3", len(ranked))
	}
	if ranked[0].Document.ID != "c" {
		t.Errorf("highest score not first: %s", ranked[0].Document.ID)
	}
	if ranked[1].Document.ID != "a" || ranked[2].Document.ID != "b" {
		t.Errorf("tie order not stable: got %s then %s, want a then b",
			ranked[1].Document.ID, ranked[2].Document.ID)
	}
}

func TestIndexSoftDelete(t *testing.T) {
	idx := seedCatalog()

	before := idx.Count(KindProduct)
	idx.Remove("w1")
	if got := idx.Count(KindProduct); got != before-1 {
		t.Errorf("Count after Remove = %d, want %d", got, before-1)
	}

	q := BuildQuery("men watches under 500", testIndexer)
	for _, r := range idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 10, Weights: DefaultProductWeights()}) {
		if r.Document.ID == "w1" {
			t.Error("soft-deleted document returned by search")
		}
	}

	// The row still exists for direct lookup
	doc, ok := idx.Get("w1")
	if !ok || doc.Active {
		t.Errorf("Get after Remove = (%v, %v), want inactive document", doc.Active, ok)
	}
}

func TestIndexRemoveByParent(t *testing.T) {
	idx := NewIndex()
	d1 := testDoc("k1#0", KindKnowledge, "Care Guide", "polish silver jewelry monthly", "", "", "", 0)
	d1.ParentID = "k1"
	d2 := testDoc("k1#1", KindKnowledge, "Care Guide", "store perfume away from sunlight", "", "", "", 0)
	d2.ParentID = "k1"
	idx.Replace([]Document{d1, d2})

	idx.RemoveByParent("k1")
	if got := idx.Count(KindKnowledge); got != 0 {
		t.Errorf("Count after RemoveByParent = %d, want 0", got)
	}
}

func TestIndexConcurrentReadWrite(t *testing.T) {
	idx := seedCatalog()
	q := BuildQuery("watches", testIndexer)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if n%2 == 0 {
					idx.Search(q, SearchOptions{Kind: KindProduct, Limit: 5, Weights: DefaultProductWeights()})
				} else {
					idx.Upsert(testDoc(fmt.Sprintf("x%d-%d", n, j), KindProduct, "Filler Watch", "filler", "watch", "", "", 100))
				}
			}
		}(i)
	}
	wg.Wait()
}
