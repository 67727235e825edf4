package search

import "time"

// Kind separates the two indexed corpora: catalog products and knowledge
// base chunks.
type Kind string

const (
	KindProduct   Kind = "product"
	KindKnowledge Kind = "knowledge"
)

// SearchType reports which similarity component produced a result.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeKeyword  SearchType = "keyword"
	SearchTypeHybrid   SearchType = "hybrid"
)

// Document is the in-memory searchable unit. Products map one-to-one onto
// catalog rows; knowledge documents are chunked at ingestion, with every
// chunk sharing the ParentID of its source document. Documents are replaced
// whole on update, never mutated in place.
type Document struct {
	ID        string
	ParentID  string
	Kind      Kind
	Title     string
	Content   string
	Category  string
	Gender    string
	Brand     string
	Price     float64
	ImageURL  string
	URL       string
	Metadata  map[string]interface{}
	Embedding []float32
	Keywords  []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdentityKey is the deduplication key: one result per key survives ranking.
// Products dedupe on id plus title; knowledge chunks collapse onto their
// parent document, or a content prefix when no parent is known.
func (d *Document) IdentityKey() string {
	if d.Kind == KindProduct {
		return d.ID + "|" + d.Title
	}
	if d.ParentID != "" {
		return d.ParentID
	}
	content := d.Content
	if len(content) > 64 {
		content = content[:64]
	}
	return content
}

// SearchResult pairs a matched document with its combined score.
type SearchResult struct {
	Document   Document
	Score      float64
	SearchType SearchType
}

// Weights holds every tunable constant of the hybrid score. The boost and
// penalty values are empirically tuned, not derived, so deployments can
// override them through configuration.
type Weights struct {
	Semantic float64
	Keyword  float64

	CategoryContent float64 // category named in document content
	CategoryTitle   float64 // extra when named in the title
	Gender          float64
	Brand           float64
	BudgetFit       float64 // up to this much for budget-midpoint proximity

	CategoryMissSoft float64 // untagged document that never mentions the category
	CategoryMissHard float64 // document tagged with a different category
	BudgetMiss       float64 // price outside the parsed budget range

	MinScore float64 // results at or below are discarded
}

// MaxScore is the upper bound of the combined score when every boost fires
// and no penalty applies.
func (w Weights) MaxScore() float64 {
	return w.Semantic + w.Keyword +
		w.CategoryContent + w.CategoryTitle +
		w.Gender + w.Brand + w.BudgetFit
}

// DefaultProductWeights favors keyword overlap more than knowledge scoring
// does, since product queries tend to be short attribute lists.
func DefaultProductWeights() Weights {
	return Weights{
		Semantic:         0.6,
		Keyword:          0.4,
		CategoryContent:  0.2,
		CategoryTitle:    0.2,
		Gender:           0.25,
		Brand:            0.15,
		BudgetFit:        0.1,
		CategoryMissSoft: 0.15,
		CategoryMissHard: 0.35,
		BudgetMiss:       0.5,
		MinScore:         0.05,
	}
}

// DefaultKnowledgeWeights leans harder on semantic similarity because
// knowledge chunks are prose, not attribute lists.
func DefaultKnowledgeWeights() Weights {
	w := DefaultProductWeights()
	w.Semantic = 0.65
	w.Keyword = 0.35
	return w
}
