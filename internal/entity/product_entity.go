package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalId  string
	Title       string
	Description string
	Category    string
	Gender      string
	Brand       string
	Price       float64
	Currency    string
	ImageURL    string
	URL         string
	Attributes  map[string]string
	Embedding   []float32
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
