package contract

import (
	"context"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredProduct wraps Product with its cosine similarity to a query vector
type ScoredProduct struct {
	Product    *entity.Product
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBulk(ctx context.Context, products []*entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeactivateMissing marks every active product whose external id is not in
	// the given feed as inactive, and reports how many rows changed.
	DeactivateMissing(ctx context.Context, externalIds []string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs the durable pgvector path: active products
	// ordered by cosine similarity to the query vector, cut at threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredProduct, error)
}
