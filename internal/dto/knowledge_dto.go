package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateKnowledgeRequest struct {
	Title    string   `json:"title" validate:"required,max=255"`
	Source   string   `json:"source" validate:"max=255"`
	Category string   `json:"category" validate:"max=64"`
	Tags     []string `json:"tags" validate:"max=16,dive,max=64"`
	Content  string   `json:"content" validate:"required"`
}

type UpdateKnowledgeRequest struct {
	Id       uuid.UUID
	Title    string   `json:"title" validate:"required,max=255"`
	Source   string   `json:"source" validate:"max=255"`
	Category string   `json:"category" validate:"max=64"`
	Tags     []string `json:"tags" validate:"max=16,dive,max=64"`
	Content  string   `json:"content" validate:"required"`
}

type KnowledgeResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Source     string     `json:"source,omitempty"`
	Content    string     `json:"content,omitempty"`
	Category   string     `json:"category,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type KnowledgeSearchResult struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	Similarity float64   `json:"similarity"`
}
