package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpsertProductRequest struct {
	ExternalId  string            `json:"external_id" validate:"required,max=64"`
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	Category    string            `json:"category" validate:"max=64"`
	Gender      string            `json:"gender" validate:"omitempty,oneof=men women unisex"`
	Brand       string            `json:"brand" validate:"max=128"`
	Price       float64           `json:"price" validate:"gte=0"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	ImageURL    string            `json:"image_url" validate:"omitempty,url"`
	URL         string            `json:"url" validate:"omitempty,url"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type ProductResponse struct {
	Id          uuid.UUID         `json:"id"`
	ExternalId  string            `json:"external_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	Gender      string            `json:"gender,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	Price       float64           `json:"price"`
	Currency    string            `json:"currency,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	URL         string            `json:"url,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at"`
}

type ScoredProductResponse struct {
	Product    ProductResponse `json:"product"`
	Similarity float64         `json:"similarity"`
}

// FeedSyncRequest is a full merchant feed drop. Products present in the
// request are created or updated; when DeactivateMissing is set, active
// products absent from the feed are marked inactive.
type FeedSyncRequest struct {
	Products          []UpsertProductRequest `json:"products" validate:"required,min=1,dive"`
	DeactivateMissing bool                   `json:"deactivate_missing"`
}

// FeedLimitError carries the numbers a merchant client needs to split an
// oversized feed drop instead of guessing at the cap.
type FeedLimitError struct {
	Limit    int `json:"limit"`
	Received int `json:"received"`
}

func (e *FeedLimitError) Error() string {
	return "feed exceeds the per-sync product limit"
}

type FeedSyncResponse struct {
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Deactivated int      `json:"deactivated"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
	ElapsedMs   int64    `json:"elapsed_ms"`
}

type ReindexResponse struct {
	Products  int   `json:"products"`
	Chunks    int   `json:"chunks"`
	ElapsedMs int64 `json:"elapsed_ms"`
}
