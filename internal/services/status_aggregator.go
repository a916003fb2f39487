package services

import (
	"context"
	"errors"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// AggregateStatus derives an obligation's status from its installments.
//
// A cancelled obligation stays cancelled. Cancelled installments are ignored;
// with no active installment left the obligation is pending. Any overdue
// installment makes it overdue, all active installments paid makes it paid
// (open-ended recurring obligations never finish), anything else is pending.
func AggregateStatus(obligation *models.Obligation, installments []models.Installment) string {
	if obligation.IsCancelled() {
		return models.StatusCancelled
	}

	active, paid := 0, 0
	for i := range installments {
		switch installments[i].Status {
		case models.StatusCancelled:
			continue
		case models.StatusOverdue:
			return models.StatusOverdue
		case models.StatusPaid:
			paid++
		}
		active++
	}

	if active == 0 {
		return models.StatusPending
	}
	if paid == active && !obligation.IsOpenEnded() {
		return models.StatusPaid
	}
	return models.StatusPending
}

// StatusAggregator keeps obligation status in line with its installments
type StatusAggregator struct {
	obligationRepo repository.ObligationRepository
}

// NewStatusAggregator creates a new status aggregator
func NewStatusAggregator(obligationRepo repository.ObligationRepository) *StatusAggregator {
	return &StatusAggregator{obligationRepo: obligationRepo}
}

// Recompute re-derives and stores the obligation status. It is idempotent: calling it
// any number of times over the same installment set yields the same status. The
// installments are read and the status written under the obligation row lock, so
// a payment racing a sweep cannot leave a status derived from a stale set.
func (a *StatusAggregator) Recompute(ctx context.Context, obligationID uint) (*models.Obligation, error) {
	var from, target string
	kept := false

	obligation, err := a.obligationRepo.UpdateStatusLocked(ctx, obligationID, func(o *models.Obligation) (bool, error) {
		from = o.Status
		target = AggregateStatus(o, o.Installments)

		changed, err := statemachine.NewObligationFSM(o).Apply(ctx, target)
		if errors.Is(err, statemachine.ErrIllegalTransition) {
			// paid and cancelled are never left by aggregation
			kept = true
			return false, nil
		}
		return changed, err
	})
	if err != nil {
		return nil, translateNotFound(err)
	}

	switch {
	case kept:
		logger.Warn("obligation status kept", "obligation_id", obligationID, "status", from, "derived", target)
	case obligation.Status != from:
		logger.Info("obligation status changed", "obligation_id", obligationID, "from", from, "to", obligation.Status)
	}
	return obligation, nil
}
