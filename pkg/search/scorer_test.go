package search

import (
	"math"
	"testing"

	"ai-shopassist-be/pkg/embedding"
)

var testIndexer = embedding.NewHeuristicIndexer()

// testDoc builds a Document the way ingestion does: features computed over
// the title, content, category, brand and gender blob.
func testDoc(id string, kind Kind, title, content, category, gender, brand string, price float64) Document {
	feats := testIndexer.Index(title + " " + content + " " + category + " " + brand + " " + gender)
	return Document{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Content:   content,
		Category:  category,
		Gender:    gender,
		Brand:     brand,
		Price:     price,
		Embedding: feats.Embedding,
		Keywords:  feats.Keywords,
		Active:    true,
	}
}

func TestParseBudget(t *testing.T) {
	inf := math.Inf(1)

	tests := []struct {
		name    string
		text    string
		wantMin float64
		wantMax float64
		wantNil bool
	}{
		{name: "under", text: "men watches under 500", wantMin: 0, wantMax: 500},
		{name: "below with currency", text: "perfume below $1,200", wantMin: 0, wantMax: 1200},
		{name: "less than", text: "something less than 300", wantMin: 0, wantMax: 300},
		{name: "between", text: "between 200 and 500 please", wantMin: 200, wantMax: 500},
		{name: "between reversed", text: "between 500 and 200", wantMin: 200, wantMax: 500},
		{name: "dash span", text: "rings $200-$450", wantMin: 200, wantMax: 450},
		{name: "to span", text: "300 to 600 budget", wantMin: 300, wantMax: 600},
		{name: "over", text: "luxury watches over 300", wantMin: 300, wantMax: inf},
		{name: "at least", text: "at least $150", wantMin: 150, wantMax: inf},
		{name: "around", text: "around 400", wantMin: 320, wantMax: 480},
		{name: "budget keyword", text: "my budget is 500", wantMin: 0, wantMax: 500},
		{name: "trailing budget", text: "a 1,500 budget for this gift", wantMin: 0, wantMax: 1500},
		{name: "thousands suffix", text: "watches under 2k", wantMin: 0, wantMax: 2000},
		{name: "no budget", text: "elegant gold necklace", wantNil: true},
		{name: "number without phrasing", text: "model 500 steel", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBudget(tt.text)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseBudget(%q) = [%v, %v], want nil", tt.text, got.Min, got.Max)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseBudget(%q) = nil, want [%v, %v]", tt.text, tt.wantMin, tt.wantMax)
			}
			if got.Min != tt.wantMin || got.Max != tt.wantMax {
				t.Errorf("ParseBudget(%q) = [%v, %v], want [%v, %v]", tt.text, got.Min, got.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery("men watches under 500", testIndexer)

	if len(q.Categories) != 1 || q.Categories[0] != embedding.CategoryWatch {
		t.Errorf("Categories = %v, want [watch]", q.Categories)
	}
	if q.Gender != embedding.GenderMen {
		t.Errorf("Gender = %q, want men", q.Gender)
	}
	if q.Budget == nil || q.Budget.Max != 500 {
		t.Errorf("Budget = %+v, want max 500", q.Budget)
	}
	if sole, ok := q.SoleCategory(); !ok || sole != embedding.CategoryWatch {
		t.Errorf("SoleCategory = (%q, %v), want (watch, true)", sole, ok)
	}

	// Two named categories means no sole category
	multi := BuildQuery("watch and necklace gift ideas", testIndexer)
	if len(multi.Categories) != 2 {
		t.Errorf("Categories = %v, want two entries", multi.Categories)
	}
	if _, ok := multi.SoleCategory(); ok {
		t.Error("SoleCategory should not resolve when two categories are named")
	}
}

func TestScoreMonotonicInKeywordOverlap(t *testing.T) {
	q := BuildQuery("steel watch sapphire chronograph", testIndexer)
	w := DefaultProductWeights()

	narrow := Document{ID: "a", Kind: KindProduct, Keywords: []string{"steel"}, Active: true}
	wide := Document{ID: "b", Kind: KindProduct, Keywords: []string{"steel", "watch", "sapphire"}, Active: true}

	lo, _ := Score(q, narrow, w)
	hi, _ := Score(q, wide, w)
	if hi < lo {
		t.Errorf("more keyword overlap scored lower: %f < %f", hi, lo)
	}
}

func TestScoreMonotonicInSemanticSimilarity(t *testing.T) {
	w := DefaultProductWeights()
	q := QueryFeatures{Embedding: unitVec(0)}

	aligned := Document{ID: "a", Embedding: unitVec(0), Active: true}
	orthogonal := Document{ID: "b", Embedding: unitVec(1), Active: true}

	hi, _ := Score(q, aligned, w)
	lo, _ := Score(q, orthogonal, w)
	if hi < lo {
		t.Errorf("aligned embedding scored lower: %f < %f", hi, lo)
	}
	if hi < w.Semantic-1e-6 {
		t.Errorf("identical embedding should earn the full semantic weight, got %f", hi)
	}
}

func TestScoreBounded(t *testing.T) {
	w := DefaultProductWeights()
	q := BuildQuery("rolex men watches under 500", testIndexer)

	// Every boost fires: category in title, gender, brand, budget midpoint
	doc := testDoc("p1", KindProduct, "Rolex Men Watch", "Classic men watch in polished steel", "watch", "men", "Rolex", 250)

	score, _ := Score(q, doc, w)
	if score > w.MaxScore()+1e-9 {
		t.Errorf("score %f exceeds bound %f", score, w.MaxScore())
	}
	if score <= w.Semantic {
		t.Errorf("fully boosted score %f suspiciously low", score)
	}
}

func TestScoreBudgetPenalty(t *testing.T) {
	w := DefaultProductWeights()
	q := BuildQuery("watches under 500", testIndexer)

	inRange := testDoc("p1", KindProduct, "Steel Watch", "day date steel watch", "watch", "", "", 450)
	outOfRange := inRange
	outOfRange.ID = "p2"
	outOfRange.Price = 900

	inScore, _ := Score(q, inRange, w)
	outScore, _ := Score(q, outOfRange, w)

	if outScore >= inScore {
		t.Errorf("out-of-budget price did not lower the score: %f >= %f", outScore, inScore)
	}
	if diff := inScore - outScore; diff < w.BudgetMiss {
		t.Errorf("penalty gap = %f, want at least %f", diff, w.BudgetMiss)
	}
}

func TestScoreCategoryMismatchPenalty(t *testing.T) {
	w := DefaultProductWeights()
	q := BuildQuery("elegant watches", testIndexer)

	tagged := testDoc("p1", KindProduct, "Amber Evening Mist", "warm amber scent", "perfume", "", "", 120)
	untagged := testDoc("p2", KindProduct, "Amber Evening Mist", "warm amber scent", "", "", "", 120)

	taggedScore, _ := Score(q, tagged, w)
	untaggedScore, _ := Score(q, untagged, w)

	// A document tagged with another category is penalized harder than an
	// untagged one that merely never mentions watches.
	if taggedScore >= untaggedScore {
		t.Errorf("hard mismatch %f should score below soft mismatch %f", taggedScore, untaggedScore)
	}
}

func TestScoreGenderTokenExact(t *testing.T) {
	w := DefaultProductWeights()
	q := BuildQuery("perfume for men", testIndexer)

	forMen := testDoc("p1", KindProduct, "Oud Noir", "bold cologne for men", "perfume", "men", "", 150)
	forWomen := testDoc("p2", KindProduct, "Rose Petal", "floral fragrance for women, female favorite", "perfume", "women", "", 150)

	menScore, _ := Score(q, forMen, w)
	womenScore, _ := Score(q, forWomen, w)

	// "female" in the women's copy must not trigger the men boost
	if womenScore >= menScore {
		t.Errorf("women's product %f should score below men's %f for a men query", womenScore, menScore)
	}
}

func TestSearchTypeOf(t *testing.T) {
	tests := []struct {
		semantic float64
		keyword  float64
		want     SearchType
	}{
		{0.5, 0.5, SearchTypeHybrid},
		{0, 0.5, SearchTypeKeyword},
		{0.5, 0, SearchTypeSemantic},
		{0, 0, SearchTypeHybrid},
	}

	for _, tt := range tests {
		if got := searchTypeOf(tt.semantic, tt.keyword); got != tt.want {
			t.Errorf("searchTypeOf(%v, %v) = %v, want %v", tt.semantic, tt.keyword, got, tt.want)
		}
	}
}

func unitVec(hot int) []float32 {
	v := make([]float32, embedding.Dim)
	v[hot] = 1
	return v
}
