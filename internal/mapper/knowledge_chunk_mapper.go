package mapper

import (
	"fmt"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/pkg/search"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkMapper struct{}

func NewKnowledgeChunkMapper() *KnowledgeChunkMapper {
	return &KnowledgeChunkMapper{}
}

func (m *KnowledgeChunkMapper) ToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.KnowledgeChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  c.DeletedAt.Valid,
	}
}

func (m *KnowledgeChunkMapper) ToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.KnowledgeChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *KnowledgeChunkMapper) ToEntities(chunks []*model.KnowledgeChunk) []*entity.KnowledgeChunk {
	entities := make([]*entity.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *KnowledgeChunkMapper) ToModels(chunks []*entity.KnowledgeChunk) []*model.KnowledgeChunk {
	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

// ToDocument converts a stored chunk into its indexed form. The index key is
// "<document id>#<chunk index>" so every chunk of one source document shares
// a ParentID and collapses onto it during result deduplication. Title and
// category come from the parent document when it is provided.
func (m *KnowledgeChunkMapper) ToDocument(c *entity.KnowledgeChunk, parent *entity.KnowledgeDocument) search.Document {
	doc := search.Document{
		ID:        fmt.Sprintf("%s#%d", c.DocumentId, c.ChunkIndex),
		ParentID:  c.DocumentId.String(),
		Kind:      search.KindKnowledge,
		Content:   c.Content,
		Embedding: c.Embedding,
		Active:    true,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		doc.UpdatedAt = *c.UpdatedAt
	}
	if parent != nil {
		doc.Title = parent.Title
		doc.Category = parent.Category
		doc.Metadata = map[string]interface{}{"source": parent.Source}
	}
	return doc
}
