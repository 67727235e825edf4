package embedding

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestIndexDeterministic(t *testing.T) {
	idx := NewHeuristicIndexer()

	first := idx.Index("Classic Men Steel Watch with sapphire glass")
	second := idx.Index("Classic Men Steel Watch with sapphire glass")

	if !reflect.DeepEqual(first.Embedding, second.Embedding) {
		t.Error("identical input produced different embeddings")
	}
	if !reflect.DeepEqual(first.Keywords, second.Keywords) {
		t.Error("identical input produced different keywords")
	}
}

func TestIndexUnitNorm(t *testing.T) {
	idx := NewHeuristicIndexer()

	feats := idx.Index("elegant rose gold bracelet for women")
	if len(feats.Embedding) != Dim {
		t.Fatalf("embedding length = %d, want %d", len(feats.Embedding), Dim)
	}

	var magnitude float64
	for _, v := range feats.Embedding {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if math.Abs(magnitude-1.0) > 1e-3 {
		t.Errorf("embedding magnitude = %f, want 1.0", magnitude)
	}
}

func TestIndexEmptyInput(t *testing.T) {
	idx := NewHeuristicIndexer()

	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   \t  "},
		{"stop words only", "the a of and is"},
		{"punctuation only", "?!... ,,,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feats := idx.Index(tt.text)

			if len(feats.Embedding) != Dim {
				t.Errorf("embedding length = %d, want %d", len(feats.Embedding), Dim)
			}
			for i, v := range feats.Embedding {
				if v != 0 {
					t.Errorf("dimension %d = %f, want zero vector", i, v)
					break
				}
			}
			if len(feats.Keywords) != 0 {
				t.Errorf("keywords = %v, want none", feats.Keywords)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "Men's WATCHES, under $500!",
			want: []string{"mens", "watches", "under", "500"},
		},
		{
			name: "drops stop words",
			text: "show me the best perfume for a gift",
			want: []string{"show", "best", "perfume", "gift"},
		},
		{
			name: "drops single characters",
			text: "a b c watch",
			want: []string{"watch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExpandSynonyms(t *testing.T) {
	got := ExpandSynonyms([]string{"watches", "steel"})

	wantPresent := []string{"watch", "watches", "timepiece", "chronograph", "steel"}
	for _, term := range wantPresent {
		found := false
		for _, g := range got {
			if g == term {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expanded set %v missing %q", got, term)
		}
	}

	// No terms from unrelated groups leak in
	for _, g := range got {
		if g == "perfume" || g == "necklace" {
			t.Errorf("expanded set contains unrelated term %q", g)
		}
	}

	// Sorted, deduplicated output
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Errorf("expanded set not strictly sorted at %d: %v", i, got)
			break
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		token  string
		want   string
		wantOk bool
	}{
		{"timepiece", CategoryWatch, true},
		{"edp", CategoryPerfume, true},
		{"jewellery", CategoryJewelry, true},
		{"steel", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := CategoryOf(tt.token)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("CategoryOf(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestGenderOfTokenExact(t *testing.T) {
	// "female" belongs to the women group even though it contains "male"
	got, ok := GenderOf("female")
	if !ok || got != GenderWomen {
		t.Errorf("GenderOf(female) = (%q, %v), want (%q, true)", got, ok, GenderWomen)
	}

	got, ok = GenderOf("male")
	if !ok || got != GenderMen {
		t.Errorf("GenderOf(male) = (%q, %v), want (%q, true)", got, ok, GenderMen)
	}
}

type stubProvider struct {
	vec []float32
	err error
}

func (s *stubProvider) Embed(text string) ([]float32, error) {
	return s.vec, s.err
}

func TestProviderIndexerFitsDimension(t *testing.T) {
	// Simulate a 768-dim remote model
	wide := make([]float32, 768)
	for i := range wide {
		wide[i] = float32(i%7) + 1
	}

	idx := NewProviderIndexer(&stubProvider{vec: wide})
	feats := idx.Index("luxury chronograph")

	if len(feats.Embedding) != Dim {
		t.Fatalf("embedding length = %d, want %d", len(feats.Embedding), Dim)
	}

	var magnitude float64
	for _, v := range feats.Embedding {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(magnitude)-1.0) > 1e-3 {
		t.Errorf("fitted vector magnitude = %f, want 1.0", math.Sqrt(magnitude))
	}

	// Keywords still come from the lexical pipeline
	if len(feats.Keywords) == 0 {
		t.Error("provider-backed indexer dropped keywords")
	}
}

func TestProviderIndexerFallsBack(t *testing.T) {
	heuristic := NewHeuristicIndexer().Index("silver necklace")

	idx := NewProviderIndexer(&stubProvider{err: errors.New("connection refused")})
	feats := idx.Index("silver necklace")

	if !reflect.DeepEqual(feats.Embedding, heuristic.Embedding) {
		t.Error("provider failure should fall back to the heuristic vector")
	}
}
