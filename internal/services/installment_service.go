package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// UpdateInstallmentInput is a partial installment update. Nil fields are left untouched.
type UpdateInstallmentInput struct {
	Status       *string
	PaidDate     *time.Time
	PaymentNotes *string
}

// InstallmentService routes installment changes through the installment state machine
type InstallmentService struct {
	repo           repository.InstallmentRepository
	obligationRepo repository.ObligationRepository
	aggregator     *StatusAggregator
	auditSvc       *AuditService
}

// NewInstallmentService creates a new installment service
func NewInstallmentService(
	repo repository.InstallmentRepository,
	obligationRepo repository.ObligationRepository,
	aggregator *StatusAggregator,
	auditSvc *AuditService,
) *InstallmentService {
	return &InstallmentService{
		repo:           repo,
		obligationRepo: obligationRepo,
		aggregator:     aggregator,
		auditSvc:       auditSvc,
	}
}

// FindByID gets an installment by ID
func (s *InstallmentService) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return inst, nil
}

// ListByObligation returns the installments of an obligation in schedule order
func (s *InstallmentService) ListByObligation(ctx context.Context, obligationID uint) ([]models.Installment, error) {
	if _, err := s.obligationRepo.FindByID(ctx, obligationID); err != nil {
		return nil, translateNotFound(err)
	}
	return s.repo.FindByObligation(ctx, obligationID)
}

// MarkPaid records a payment. The paid date is required and cannot lie after today.
func (s *InstallmentService) MarkPaid(ctx context.Context, id uint, paidDate time.Time, notes *string, now time.Time) (*models.Installment, error) {
	if paidDate.IsZero() {
		return nil, fmt.Errorf("%w: paid_date is required", ErrInvalidPaymentDate)
	}
	paidOn := schedule.DateOf(paidDate)
	if paidOn.After(schedule.DateOf(now)) {
		return nil, fmt.Errorf("%w: %s is in the future", ErrInvalidPaymentDate, paidOn.Format(models.DateLayout))
	}

	return s.change(ctx, id, models.StatusPaid, notes, func(m *statemachine.InstallmentFSM, _ *models.Installment) error {
		return m.Pay(ctx, paidOn, nil)
	})
}

// MarkOverdue flags a pending installment whose due date has passed
func (s *InstallmentService) MarkOverdue(ctx context.Context, id uint, now time.Time) (*models.Installment, error) {
	today := schedule.DateOf(now)
	return s.change(ctx, id, models.StatusOverdue, nil, func(m *statemachine.InstallmentFSM, inst *models.Installment) error {
		return lapse(ctx, m, inst, today)
	})
}

// Cancel voids a pending or overdue installment
func (s *InstallmentService) Cancel(ctx context.Context, id uint) (*models.Installment, error) {
	return s.change(ctx, id, models.StatusCancelled, nil, func(m *statemachine.InstallmentFSM, _ *models.Installment) error {
		return m.Cancel(ctx)
	})
}

// Update applies a partial update. A status change goes through the matching
// transition; notes alone may be edited in any state.
func (s *InstallmentService) Update(ctx context.Context, id uint, input UpdateInstallmentInput, now time.Time) (*models.Installment, error) {
	if input.Status == nil {
		if input.PaidDate != nil {
			return nil, fmt.Errorf("%w: paid_date can only be set together with status paid", ErrInvalidPaymentDate)
		}
		if input.PaymentNotes == nil {
			return s.FindByID(ctx, id)
		}
		return s.updateNotes(ctx, id, input.PaymentNotes)
	}

	today := schedule.DateOf(now)
	switch *input.Status {
	case models.StatusPaid:
		if input.PaidDate == nil {
			return nil, fmt.Errorf("%w: paid_date is required", ErrInvalidPaymentDate)
		}
		return s.MarkPaid(ctx, id, *input.PaidDate, input.PaymentNotes, now)
	case models.StatusOverdue:
		return s.change(ctx, id, models.StatusOverdue, input.PaymentNotes, func(m *statemachine.InstallmentFSM, inst *models.Installment) error {
			return lapse(ctx, m, inst, today)
		})
	case models.StatusCancelled:
		return s.change(ctx, id, models.StatusCancelled, input.PaymentNotes, func(m *statemachine.InstallmentFSM, _ *models.Installment) error {
			return m.Cancel(ctx)
		})
	case models.StatusPending:
		// no event leads back to pending; only the no-op on a pending installment is accepted
		return s.change(ctx, id, models.StatusPending, input.PaymentNotes, func(_ *statemachine.InstallmentFSM, inst *models.Installment) error {
			return fmt.Errorf("%w: installment %d cannot go from %s to pending", ErrIllegalTransition, inst.ID, inst.Status)
		})
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, *input.Status)
	}
}

// change loads the installment, applies the transition, stores it and re-aggregates the parent
func (s *InstallmentService) change(
	ctx context.Context,
	id uint,
	target string,
	notes *string,
	apply func(*statemachine.InstallmentFSM, *models.Installment) error,
) (*models.Installment, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	changed, err := s.transition(ctx, inst, target, notes, apply)
	if err != nil {
		return nil, err
	}
	if !changed {
		if notes != nil {
			return s.updateNotes(ctx, id, notes)
		}
		return inst, nil
	}

	if _, err := s.aggregator.Recompute(ctx, inst.ObligationID); err != nil {
		// the installment change is stored; the next mutation or sweep re-aggregates
		logger.Error("obligation recompute failed", "obligation_id", inst.ObligationID, "error", err)
	}
	return inst, nil
}

// transition moves a loaded installment to target with a compare-and-set write.
// It reports false when the installment already holds target, including when a
// concurrent caller got there first.
func (s *InstallmentService) transition(
	ctx context.Context,
	inst *models.Installment,
	target string,
	notes *string,
	apply func(*statemachine.InstallmentFSM, *models.Installment) error,
) (bool, error) {
	if inst.Status == target {
		return false, nil
	}

	from := inst.Status
	if err := apply(statemachine.NewInstallmentFSM(inst), inst); err != nil {
		return false, err
	}
	if notes != nil {
		inst.PaymentNotes = notes
	}

	applied, err := s.repo.Transition(ctx, inst, from)
	if err != nil {
		return false, err
	}
	if !applied {
		fresh, err := s.repo.FindByID(ctx, inst.ID)
		if err != nil {
			return false, translateNotFound(err)
		}
		*inst = *fresh
		if fresh.Status == target {
			return false, nil
		}
		return false, fmt.Errorf("%w: installment %d changed concurrently to %s", ErrIllegalTransition, inst.ID, fresh.Status)
	}

	logger.Info("installment status changed", "installment_id", inst.ID, "obligation_id", inst.ObligationID, "from", from, "to", inst.Status)
	s.auditSvc.Log(ctx, auditActionFor(target), models.AuditEntityInstallment, inst.ID,
		fmt.Sprintf("Cuota %d: %s -> %s", inst.InstallmentNumber, from, inst.Status))
	return true, nil
}

func (s *InstallmentService) updateNotes(ctx context.Context, id uint, notes *string) (*models.Installment, error) {
	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, translateNotFound(err)
	}
	s.auditSvc.Log(ctx, models.AuditActionNote, models.AuditEntityInstallment, id, "Notas de pago actualizadas")
	return s.FindByID(ctx, id)
}

// lapse marks a pending installment overdue once its due date is strictly before today
func lapse(ctx context.Context, m *statemachine.InstallmentFSM, inst *models.Installment, today time.Time) error {
	if inst.MayLapse() && !inst.IsExpired(today) {
		return fmt.Errorf("%w: installment %d is due %s", ErrPrematureTransition, inst.ID, inst.DueDate.Format(models.DateLayout))
	}
	return m.Lapse(ctx)
}

func auditActionFor(status string) string {
	switch status {
	case models.StatusPaid:
		return models.AuditActionPay
	case models.StatusOverdue:
		return models.AuditActionLapse
	default:
		return models.AuditActionCancel
	}
}
