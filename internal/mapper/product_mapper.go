package mapper

import (
	"fmt"
	"strings"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/pkg/search"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	var embeddingValue []float32
	if p.Embedding != nil {
		embeddingValue = p.Embedding.Slice()
	}

	return &entity.Product{
		Id:          p.Id,
		ExternalId:  p.ExternalId,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Gender:      p.Gender,
		Brand:       p.Brand,
		Price:       p.Price,
		Currency:    p.Currency,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		Attributes:  attributesToEntity(p.Attributes),
		Embedding:   embeddingValue,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	var embeddingValue *pgvector.Vector
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		embeddingValue = &v
	}

	return &model.Product{
		Id:          p.Id,
		ExternalId:  p.ExternalId,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Gender:      p.Gender,
		Brand:       p.Brand,
		Price:       p.Price,
		Currency:    p.Currency,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		Attributes:  attributesToModel(p.Attributes),
		Embedding:   embeddingValue,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *ProductMapper) ToModels(products []*entity.Product) []*model.Product {
	models := make([]*model.Product, len(products))
	for i, p := range products {
		models[i] = m.ToModel(p)
	}
	return models
}

// SearchText is the text a product is indexed under: title, description and
// attribute values in one block. Embedding at import time and keyword
// extraction at index-load time must both run over this exact text.
func (m *ProductMapper) SearchText(p *entity.Product) string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	if p.Description != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Description)
	}
	if p.Category != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Category)
	}
	if p.Brand != "" {
		sb.WriteString(" ")
		sb.WriteString(p.Brand)
	}
	for k, v := range p.Attributes {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString(" ")
		sb.WriteString(v)
	}
	return sb.String()
}

// ToDocument converts a catalog row into its in-memory searchable form.
// Keywords are left empty; the caller re-derives them with its indexer so
// the lexical pipeline stays consistent with the active synonym table.
func (m *ProductMapper) ToDocument(p *entity.Product) search.Document {
	meta := make(map[string]interface{}, len(p.Attributes)+2)
	for k, v := range p.Attributes {
		meta[k] = v
	}
	meta["external_id"] = p.ExternalId
	meta["currency"] = p.Currency

	updatedAt := p.CreatedAt
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return search.Document{
		ID:        p.Id.String(),
		Kind:      search.KindProduct,
		Title:     p.Title,
		Content:   p.Description,
		Category:  p.Category,
		Gender:    p.Gender,
		Brand:     p.Brand,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		URL:       p.URL,
		Metadata:  meta,
		Embedding: p.Embedding,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ProductMapper) ToDocuments(products []*entity.Product) []search.Document {
	docs := make([]search.Document, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		docs = append(docs, m.ToDocument(p))
	}
	return docs
}

func attributesToEntity(attrs datatypes.JSONMap) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

func attributesToModel(attrs map[string]string) datatypes.JSONMap {
	if len(attrs) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
