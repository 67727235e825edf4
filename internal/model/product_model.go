package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId  string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	Title       string            `gorm:"type:varchar(255);not null"`
	Description string            `gorm:"type:text"`
	Category    string            `gorm:"type:varchar(64);index"`
	Gender      string            `gorm:"type:varchar(16);index"`
	Brand       string            `gorm:"type:varchar(128);index"`
	Price       float64           `gorm:"type:numeric(12,2);not null"`
	Currency    string            `gorm:"type:varchar(8);default:'USD'"`
	ImageURL    string            `gorm:"type:text"`
	URL         string            `gorm:"type:text"`
	Attributes  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding   *pgvector.Vector  `gorm:"type:vector(100)"` // NULL until the index consumer has embedded the row
	Active      bool              `gorm:"default:true;index"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}
