package dto

import "github.com/google/uuid"

// IndexDocumentMessage rides the in-process indexing topic. Kind selects the
// corpus (constant.IndexKindProduct or constant.IndexKindKnowledge) and Id is
// the row to re-embed and re-index.
type IndexDocumentMessage struct {
	Kind string    `json:"kind"`
	Id   uuid.UUID `json:"id"`
}
