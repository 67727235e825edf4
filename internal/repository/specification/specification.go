package specification

import "gorm.io/gorm"

// Specification is a composable query fragment. Repositories accept any
// number of them and AND the results together, which keeps catalog and
// knowledge filtering declarative at the service layer.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
