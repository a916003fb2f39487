package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ObligationRepository defines the interface for obligation data access
type ObligationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Obligation, error)
	FindByIDWithInstallments(ctx context.Context, id uint) (*models.Obligation, error)
	Create(ctx context.Context, obligation *models.Obligation) error
	UpdateStatusLocked(ctx context.Context, id uint, derive func(*models.Obligation) (bool, error)) (*models.Obligation, error)
	CancelCascade(ctx context.Context, obligation *models.Obligation, from string) (int64, bool, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ObligationQuery) ([]models.Obligation, int64, error)
	FindWithExpiredPending(ctx context.Context, today time.Time) ([]models.Obligation, error)
	FindOpenEndedRecurring(ctx context.Context) ([]models.Obligation, error)
}

// ObligationQuery extends ListQuery with obligation-specific filters
type ObligationQuery struct {
	*ListQuery
	Kind   string
	Status string
}

// sortable columns accepted from callers
var obligationSortColumns = map[string]string{
	"created_at":     "obligations.created_at",
	"updated_at":     "obligations.updated_at",
	"status":         "obligations.status",
	"kind":           "obligations.kind",
	"first_due_date": "obligations.first_due_date",
	"total_amount":   "obligations.total_amount",
}

type obligationRepository struct {
	db *gorm.DB
}

// NewObligationRepository creates a new obligation repository
func NewObligationRepository(db *gorm.DB) ObligationRepository {
	return &obligationRepository{db: db}
}

func (r *obligationRepository) FindByID(ctx context.Context, id uint) (*models.Obligation, error) {
	var obligation models.Obligation
	err := r.db.WithContext(ctx).First(&obligation, id).Error
	if err != nil {
		return nil, err
	}
	return &obligation, nil
}

func (r *obligationRepository) FindByIDWithInstallments(ctx context.Context, id uint) (*models.Obligation, error) {
	var obligation models.Obligation
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&obligation, id).Error
	if err != nil {
		return nil, err
	}
	return &obligation, nil
}

func (r *obligationRepository) Create(ctx context.Context, obligation *models.Obligation) error {
	return r.db.WithContext(ctx).Omit("Installments").Create(obligation).Error
}

// UpdateStatusLocked locks the obligation row, loads its installments and calls
// derive. When derive reports a change the new status is written before the lock
// is released, so no installment write can slip between the read and the write.
func (r *obligationRepository) UpdateStatusLocked(ctx context.Context, id uint, derive func(*models.Obligation) (bool, error)) (*models.Obligation, error) {
	var obligation models.Obligation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&obligation, id).Error; err != nil {
			return err
		}
		if err := tx.Where("obligation_id = ?", id).
			Order("installment_number ASC").
			Find(&obligation.Installments).Error; err != nil {
			return err
		}

		changed, err := derive(&obligation)
		if err != nil || !changed {
			return err
		}
		return tx.Model(&models.Obligation{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     obligation.Status,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &obligation, nil
}

// CancelCascade stores the obligation as cancelled and voids its pending and
// overdue installments in one transaction. Nothing is written, and false is
// reported, when the stored status is no longer from.
func (r *obligationRepository) CancelCascade(ctx context.Context, obligation *models.Obligation, from string) (int64, bool, error) {
	var cancelled int64
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Obligation{}).
			Where("id = ? AND status = ?", obligation.ID, from).
			Updates(map[string]interface{}{
				"status":       obligation.Status,
				"cancelled_at": obligation.CancelledAt,
				"updated_at":   now,
			})
		if result.Error != nil || result.RowsAffected == 0 {
			return result.Error
		}

		result = tx.Model(&models.Installment{}).
			Where("obligation_id = ? AND status IN ?", obligation.ID, []string{models.StatusPending, models.StatusOverdue}).
			Updates(map[string]interface{}{
				"status":     models.StatusCancelled,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		cancelled = result.RowsAffected
		applied = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return cancelled, applied, nil
}

// Delete removes the obligation and every installment it owns
func (r *obligationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("obligation_id = ?", id).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Obligation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *obligationRepository) List(ctx context.Context, query *ObligationQuery) ([]models.Obligation, int64, error) {
	var obligations []models.Obligation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Obligation{})

	if query.Kind != "" {
		db = db.Where("obligations.kind = ?", query.Kind)
	}
	if query.Status != "" {
		db = db.Where("obligations.status = ?", query.Status)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["start_date"]; ok && val != "" {
			db = db.Where("obligations.created_at >= ?", val)
		}
		if val, ok := query.Filters["end_date"]; ok && val != "" {
			// Ensure we include the full day if only date is provided
			if len(val) == 10 { // YYYY-MM-DD
				val += " 23:59:59"
			}
			db = db.Where("obligations.created_at <= ?", val)
		}
		if val, ok := query.Filters["guid"]; ok && val != "" {
			db = db.Where("obligations.guid = ?", val)
		}
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("obligations.description ILIKE ? OR obligations.notes ILIKE ? OR obligations.guid ILIKE ?",
			search, search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "obligations.created_at DESC"
	if column, ok := obligationSortColumns[query.SortBy]; ok {
		order = column
		if query.SortDir == "desc" {
			order += " DESC"
		}
	}
	db = query.paginate(db.Order(order))

	err := db.Find(&obligations).Error
	return obligations, total, err
}

// FindWithExpiredPending returns non-cancelled obligations that own at least one
// pending installment due strictly before today, whatever their current status.
func (r *obligationRepository) FindWithExpiredPending(ctx context.Context, today time.Time) ([]models.Obligation, error) {
	var obligations []models.Obligation
	expired := r.db.Model(&models.Installment{}).
		Select("obligation_id").
		Where("status = ? AND due_date < ?", models.StatusPending, today)

	err := r.db.WithContext(ctx).
		Where("status <> ?", models.StatusCancelled).
		Where("id IN (?)", expired).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		Order("id ASC").
		Find(&obligations).Error
	return obligations, err
}

// FindOpenEndedRecurring returns active recurring obligations without an end month
func (r *obligationRepository) FindOpenEndedRecurring(ctx context.Context) ([]models.Obligation, error) {
	var obligations []models.Obligation
	err := r.db.WithContext(ctx).
		Where("kind = ? AND end_month IS NULL AND status <> ?", models.KindCostFixed, models.StatusCancelled).
		Order("id ASC").
		Find(&obligations).Error
	return obligations, err
}
