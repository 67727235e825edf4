package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByExternalId struct {
	ExternalId string
}

func (s ByExternalId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_id = ?", s.ExternalId)
}

type ByExternalIds struct {
	ExternalIds []string
}

func (s ByExternalIds) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_id IN ?", s.ExternalIds)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByGender struct {
	Gender string
}

func (s ByGender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gender = ?", s.Gender)
}

type ByBrand struct {
	Brand string
}

func (s ByBrand) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("brand = ?", s.Brand)
}

// ByPriceRange filters on price. Max <= 0 means no upper bound.
type ByPriceRange struct {
	Min float64
	Max float64
}

func (s ByPriceRange) Apply(db *gorm.DB) *gorm.DB {
	db = db.Where("price >= ?", s.Min)
	if s.Max > 0 {
		db = db.Where("price <= ?", s.Max)
	}
	return db
}

// ActiveOnly keeps only products still present in the merchant feed.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}
