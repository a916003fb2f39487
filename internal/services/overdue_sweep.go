package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// SweepResult summarizes one overdue sweep
type SweepResult struct {
	Transitioned       int `json:"transitioned"`
	ObligationsScanned int `json:"obligations_scanned"`
	ObligationsFailed  int `json:"obligations_failed"`
}

// OverdueSweepService flags pending installments whose due date has passed
type OverdueSweepService struct {
	obligationRepo repository.ObligationRepository
	installments   *InstallmentService
	aggregator     *StatusAggregator
	auditSvc       *AuditService
}

// NewOverdueSweepService creates a new overdue sweep service
func NewOverdueSweepService(
	obligationRepo repository.ObligationRepository,
	installments *InstallmentService,
	aggregator *StatusAggregator,
	auditSvc *AuditService,
) *OverdueSweepService {
	return &OverdueSweepService{
		obligationRepo: obligationRepo,
		installments:   installments,
		aggregator:     aggregator,
		auditSvc:       auditSvc,
	}
}

// Run marks every pending installment due strictly before now's date as overdue and
// re-aggregates each touched obligation once. A second run with the same now changes
// nothing. A failing obligation is logged and skipped; the sweep carries on.
func (s *OverdueSweepService) Run(ctx context.Context, now time.Time) (*SweepResult, error) {
	today := schedule.DateOf(now)
	start := time.Now()

	obligations, err := s.obligationRepo.FindWithExpiredPending(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load sweep candidates: %w", err)
	}

	result := &SweepResult{}
	for i := range obligations {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		obligation := &obligations[i]
		result.ObligationsScanned++

		n, err := s.sweepObligation(ctx, obligation, today)
		result.Transitioned += n
		if err != nil {
			result.ObligationsFailed++
			logger.Error("overdue sweep failed for obligation", "obligation_id", obligation.ID, "error", err)
			sentry.CaptureException(fmt.Errorf("overdue sweep obligation %d: %w", obligation.ID, err))
		}
	}

	logger.Info("overdue sweep finished",
		"date", today.Format(models.DateLayout),
		"obligations", result.ObligationsScanned,
		"transitioned", result.Transitioned,
		"failed", result.ObligationsFailed,
		"elapsed", time.Since(start),
	)
	if result.Transitioned > 0 {
		s.auditSvc.Log(ctx, models.AuditActionSweep, models.AuditEntityInstallment, 0,
			fmt.Sprintf("%d cuotas marcadas como vencidas al %s", result.Transitioned, today.Format(models.DateLayout)))
	}

	return result, nil
}

func (s *OverdueSweepService) sweepObligation(ctx context.Context, obligation *models.Obligation, today time.Time) (int, error) {
	transitioned := 0
	for j := range obligation.Installments {
		inst := &obligation.Installments[j]
		if !inst.IsExpired(today) {
			continue
		}
		changed, err := s.installments.transition(ctx, inst, models.StatusOverdue, nil,
			func(m *statemachine.InstallmentFSM, inst *models.Installment) error {
				return lapse(ctx, m, inst, today)
			})
		if errors.Is(err, ErrIllegalTransition) {
			// paid or cancelled since the candidates were loaded
			logger.Debug("installment left pending during sweep", "installment_id", inst.ID)
			continue
		}
		if err != nil {
			return transitioned, err
		}
		if changed {
			transitioned++
		}
	}

	if _, err := s.aggregator.Recompute(ctx, obligation.ID); err != nil {
		return transitioned, err
	}
	return transitioned, nil
}
