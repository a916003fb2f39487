package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// CreateObligationInput describes a new obligation. Finite kinds fill the
// interval fields, cost_fixed fills the recurring ones.
type CreateObligationInput struct {
	Kind        string
	Description *string
	Notes       *string

	TotalAmount      *decimal.Decimal
	InstallmentCount *int
	IntervalDays     *int
	FirstDueDate     *time.Time

	RecurringAmount *decimal.Decimal
	DueDay          *int
	StartMonth      *schedule.Month
	EndMonth        *schedule.Month
}

// ObligationService handles the obligation lifecycle outside of installment payments
type ObligationService struct {
	repo     repository.ObligationRepository
	auditSvc *AuditService
}

// NewObligationService creates a new obligation service
func NewObligationService(repo repository.ObligationRepository, auditSvc *AuditService) *ObligationService {
	return &ObligationService{
		repo:     repo,
		auditSvc: auditSvc,
	}
}

// Create validates and stores a pending obligation without installments
func (s *ObligationService) Create(ctx context.Context, input CreateObligationInput) (*models.Obligation, error) {
	obligation := &models.Obligation{
		GUID:             uuid.NewString(),
		Kind:             input.Kind,
		Description:      input.Description,
		Notes:            input.Notes,
		TotalAmount:      input.TotalAmount,
		InstallmentCount: input.InstallmentCount,
		IntervalDays:     input.IntervalDays,
		RecurringAmount:  input.RecurringAmount,
		DueDay:           input.DueDay,
		StartMonth:       input.StartMonth,
		EndMonth:         input.EndMonth,
		Status:           models.StatusPending,
	}
	if input.FirstDueDate != nil {
		first := schedule.DateOf(*input.FirstDueDate)
		obligation.FirstDueDate = &first
	}

	if err := validateSchedule(obligation); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, obligation); err != nil {
		return nil, err
	}

	logger.Info("obligation created", "obligation_id", obligation.ID, "kind", obligation.Kind)
	s.auditSvc.Log(ctx, models.AuditActionCreate, models.AuditEntityObligation, obligation.ID,
		fmt.Sprintf("Obligación %s creada (%s)", obligation.GUID, obligation.Kind))

	return obligation, nil
}

// FindByID gets an obligation with its installments
func (s *ObligationService) FindByID(ctx context.Context, id uint) (*models.Obligation, error) {
	obligation, err := s.repo.FindByIDWithInstallments(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return obligation, nil
}

func (s *ObligationService) List(ctx context.Context, query *repository.ObligationQuery) ([]models.Obligation, int64, error) {
	return s.repo.List(ctx, query)
}

// Cancel voids a pending or overdue obligation together with its open installments.
// Paid installments keep their status. Both writes share one transaction, so a
// failure leaves the obligation and its installments as they were.
func (s *ObligationService) Cancel(ctx context.Context, id uint, now time.Time) (*models.Obligation, error) {
	obligation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	from := obligation.Status
	if err := statemachine.NewObligationFSM(obligation).Cancel(ctx); err != nil {
		return nil, err
	}
	cancelledAt := now
	obligation.CancelledAt = &cancelledAt

	cancelled, applied, err := s.repo.CancelCascade(ctx, obligation, from)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel obligation %d: %w", id, err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: obligation %d changed while cancelling", ErrIllegalTransition, id)
	}

	logger.Info("obligation cancelled", "obligation_id", id, "installments_cancelled", cancelled)
	s.auditSvc.Log(ctx, models.AuditActionCancel, models.AuditEntityObligation, id,
		fmt.Sprintf("Obligación cancelada, %d cuotas anuladas", cancelled))

	return s.FindByID(ctx, id)
}

// Delete removes the obligation and all its installments
func (s *ObligationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}

	logger.Info("obligation deleted", "obligation_id", id)
	s.auditSvc.Log(ctx, models.AuditActionDelete, models.AuditEntityObligation, id, "Obligación eliminada con sus cuotas")
	return nil
}
