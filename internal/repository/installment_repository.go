package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByObligation(ctx context.Context, obligationID uint) ([]models.Installment, error)
	InsertSchedule(ctx context.Context, obligationID uint, expectedExisting int, installments []models.Installment) error
	Transition(ctx context.Context, installment *models.Installment, from string) (bool, error)
	UpdateNotes(ctx context.Context, id uint, notes *string) error
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByObligation(ctx context.Context, obligationID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("installment_number ASC").
		Find(&installments).Error
	return installments, err
}

// InsertSchedule appends installments to an obligation in one transaction.
// The obligation row is locked and the write only proceeds when the obligation
// still owns exactly expectedExisting installments; otherwise ErrScheduleConflict.
func (r *installmentRepository) InsertSchedule(ctx context.Context, obligationID uint, expectedExisting int, installments []models.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var obligation models.Obligation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&obligation, obligationID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Installment{}).
			Where("obligation_id = ?", obligationID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing != int64(expectedExisting) {
			return ErrScheduleConflict
		}

		if len(installments) == 0 {
			return nil
		}

		for i := range installments {
			installments[i].ObligationID = obligationID
		}
		if err := tx.Create(&installments).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrScheduleConflict
			}
			return err
		}

		return tx.Model(&models.Obligation{}).
			Where("id = ?", obligationID).
			Update("updated_at", time.Now()).Error
	})
}

// Transition writes the installment's new state only if its stored status is
// still from. It reports whether the row was updated.
func (r *installmentRepository) Transition(ctx context.Context, installment *models.Installment, from string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ? AND status = ?", installment.ID, from).
		Updates(map[string]interface{}{
			"status":        installment.Status,
			"paid_date":     installment.PaidDate,
			"payment_notes": installment.PaymentNotes,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *installmentRepository) UpdateNotes(ctx context.Context, id uint, notes *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_notes": notes,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
