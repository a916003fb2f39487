package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrScheduleConflict is returned when the installment set of an obligation
// changed between reading it and writing new installments
var ErrScheduleConflict = errors.New("installment schedule changed concurrently")

// Repositories holds all repository instances
type Repositories struct {
	Obligation  ObligationRepository
	Installment InstallmentRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Obligation:  NewObligationRepository(db),
		Installment: NewInstallmentRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// paginate applies page/per_page to the query
func (q *ListQuery) paginate(db *gorm.DB) *gorm.DB {
	if q.PerPage <= 0 {
		return db
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
}
