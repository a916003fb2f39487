package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// InstallmentGenerator turns an obligation's schedule into installments
type InstallmentGenerator struct {
	obligationRepo  repository.ObligationRepository
	installmentRepo repository.InstallmentRepository
	aggregator      *StatusAggregator
	auditSvc        *AuditService
	horizonMonths   int
}

// NewInstallmentGenerator creates a new installment generator. horizonMonths is how
// many months past the current one an open-ended recurring schedule is materialized.
func NewInstallmentGenerator(
	obligationRepo repository.ObligationRepository,
	installmentRepo repository.InstallmentRepository,
	aggregator *StatusAggregator,
	auditSvc *AuditService,
	horizonMonths int,
) *InstallmentGenerator {
	return &InstallmentGenerator{
		obligationRepo:  obligationRepo,
		installmentRepo: installmentRepo,
		aggregator:      aggregator,
		auditSvc:        auditSvc,
		horizonMonths:   horizonMonths,
	}
}

// Horizon returns the last month to materialize for a recurring obligation.
// Bounded schedules are materialized through their end month; open-ended ones
// through the current month plus the configured horizon, and never before their start.
func (g *InstallmentGenerator) Horizon(obligation *models.Obligation, now time.Time) schedule.Month {
	if obligation.EndMonth != nil {
		return *obligation.EndMonth
	}
	horizon := schedule.MonthOf(now).AddMonths(g.horizonMonths)
	if obligation.StartMonth != nil && horizon.Before(*obligation.StartMonth) {
		horizon = *obligation.StartMonth
	}
	return horizon
}

// Build returns the installment drafts of an obligation, numbered from 1, without persisting them
func (g *InstallmentGenerator) Build(obligation *models.Obligation, horizon schedule.Month) ([]models.Installment, error) {
	if err := validateSchedule(obligation); err != nil {
		return nil, err
	}

	if obligation.IsRecurring() {
		dates := obligation.MonthlySeries().Through(horizon)
		return drafts(dates, func(int) decimal.Decimal { return *obligation.RecurringAmount }, 1), nil
	}

	dates, err := schedule.IntervalDueDates(*obligation.FirstDueDate, *obligation.IntervalDays, *obligation.InstallmentCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	amounts, err := schedule.SplitAmount(*obligation.TotalAmount, *obligation.InstallmentCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return drafts(dates, func(i int) decimal.Decimal { return amounts[i] }, 1), nil
}

// Generate materializes the installments of an obligation exactly once
func (g *InstallmentGenerator) Generate(ctx context.Context, obligationID uint, now time.Time) (*models.Obligation, error) {
	obligation, err := g.obligationRepo.FindByID(ctx, obligationID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if obligation.IsCancelled() {
		return nil, fmt.Errorf("%w: obligation %d is cancelled", ErrIllegalTransition, obligationID)
	}

	existing, err := g.installmentRepo.FindByObligation(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyGenerated
	}

	installments, err := g.Build(obligation, g.Horizon(obligation, now))
	if err != nil {
		return nil, err
	}

	if err := g.installmentRepo.InsertSchedule(ctx, obligationID, 0, installments); err != nil {
		if errors.Is(err, repository.ErrScheduleConflict) {
			return nil, ErrAlreadyGenerated
		}
		return nil, translateNotFound(err)
	}

	logger.Info("installments generated", "obligation_id", obligationID, "count", len(installments))
	g.auditSvc.Log(ctx, models.AuditActionGenerate, models.AuditEntityObligation, obligationID,
		fmt.Sprintf("%d cuotas generadas", len(installments)))

	if _, err := g.aggregator.Recompute(ctx, obligationID); err != nil {
		return nil, err
	}
	return g.obligationRepo.FindByIDWithInstallments(ctx, obligationID)
}

// Extend appends the months of a recurring schedule that fall between its last
// installment and the horizon. It returns how many installments were added.
func (g *InstallmentGenerator) Extend(ctx context.Context, obligationID uint, now time.Time) (int, error) {
	obligation, err := g.obligationRepo.FindByID(ctx, obligationID)
	if err != nil {
		return 0, translateNotFound(err)
	}
	if !obligation.IsRecurring() {
		return 0, fmt.Errorf("%w: only recurring obligations can be extended", ErrInvalidSchedule)
	}
	if obligation.IsCancelled() {
		return 0, fmt.Errorf("%w: obligation %d is cancelled", ErrIllegalTransition, obligationID)
	}
	if err := validateSchedule(obligation); err != nil {
		return 0, err
	}

	existing, err := g.installmentRepo.FindByObligation(ctx, obligationID)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 0, fmt.Errorf("%w: installments of obligation %d were never generated", ErrInvalidSchedule, obligationID)
	}

	series := obligation.MonthlySeries()
	horizon := g.Horizon(obligation, now)

	var dates []time.Time
	for k := len(existing) + 1; ; k++ {
		date, ok := series.At(k)
		if !ok || schedule.MonthOf(date).After(horizon) {
			break
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return 0, nil
	}

	installments := drafts(dates, func(int) decimal.Decimal { return *obligation.RecurringAmount }, len(existing)+1)
	if err := g.installmentRepo.InsertSchedule(ctx, obligationID, len(existing), installments); err != nil {
		if errors.Is(err, repository.ErrScheduleConflict) {
			// another extension already appended these months
			logger.Debug("concurrent extension skipped", "obligation_id", obligationID)
			return 0, nil
		}
		return 0, err
	}

	logger.Info("recurring schedule extended", "obligation_id", obligationID, "added", len(installments), "through", horizon.String())
	g.auditSvc.Log(ctx, models.AuditActionExtend, models.AuditEntityObligation, obligationID,
		fmt.Sprintf("%d cuotas agregadas hasta %s", len(installments), horizon))

	if _, err := g.aggregator.Recompute(ctx, obligationID); err != nil {
		return len(installments), err
	}
	return len(installments), nil
}

// ExtendAll extends every active open-ended recurring obligation. Failures are
// logged per obligation and do not stop the run.
func (g *InstallmentGenerator) ExtendAll(ctx context.Context, now time.Time) (int, error) {
	obligations, err := g.obligationRepo.FindOpenEndedRecurring(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := range obligations {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		n, err := g.Extend(ctx, obligations[i].ID, now)
		if errors.Is(err, ErrInvalidSchedule) {
			logger.Warn("recurring extension skipped", "obligation_id", obligations[i].ID, "error", err)
			continue
		}
		if err != nil {
			logger.Error("recurring extension failed", "obligation_id", obligations[i].ID, "error", err)
			continue
		}
		added += n
	}
	return added, nil
}

// drafts pairs due dates with amounts into pending installments numbered from first
func drafts(dates []time.Time, amount func(i int) decimal.Decimal, first int) []models.Installment {
	installments := make([]models.Installment, len(dates))
	for i, date := range dates {
		installments[i] = models.Installment{
			InstallmentNumber: first + i,
			DueDate:           date,
			Amount:            amount(i),
			Status:            models.StatusPending,
		}
	}
	return installments
}

// validateSchedule checks that exactly the schedule shape of the obligation's kind is populated
func validateSchedule(o *models.Obligation) error {
	if !models.IsValidKind(o.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSchedule, o.Kind)
	}

	if o.IsRecurring() {
		if o.TotalAmount != nil || o.InstallmentCount != nil || o.IntervalDays != nil || o.FirstDueDate != nil {
			return fmt.Errorf("%w: recurring obligations take recurring_amount, due_day and start_month only", ErrInvalidSchedule)
		}
		if o.RecurringAmount == nil || !o.RecurringAmount.IsPositive() {
			return fmt.Errorf("%w: recurring_amount must be positive", ErrInvalidSchedule)
		}
		if !o.RecurringAmount.Equal(o.RecurringAmount.Round(schedule.CurrencyPlaces)) {
			return fmt.Errorf("%w: recurring_amount has more than %d decimals", ErrInvalidSchedule, schedule.CurrencyPlaces)
		}
		if o.StartMonth == nil || o.DueDay == nil {
			return fmt.Errorf("%w: start_month and due_day are required", ErrInvalidSchedule)
		}
		if err := o.MonthlySeries().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		return nil
	}

	if o.RecurringAmount != nil || o.DueDay != nil || o.StartMonth != nil || o.EndMonth != nil {
		return fmt.Errorf("%w: finite obligations take total_amount, installment_count, interval_days and first_due_date only", ErrInvalidSchedule)
	}
	if o.TotalAmount == nil || o.TotalAmount.IsZero() {
		return fmt.Errorf("%w: total_amount is required and must not be zero", ErrInvalidSchedule)
	}
	// a losing profit share is a debt of the partner and keeps its sign
	if o.TotalAmount.IsNegative() && o.Kind != models.KindProfitShare {
		return fmt.Errorf("%w: total_amount must be positive", ErrInvalidSchedule)
	}
	if o.InstallmentCount == nil || *o.InstallmentCount < 1 {
		return fmt.Errorf("%w: installment_count must be at least 1", ErrInvalidSchedule)
	}
	if o.IntervalDays == nil || *o.IntervalDays < 1 {
		return fmt.Errorf("%w: interval_days must be at least 1", ErrInvalidSchedule)
	}
	if o.FirstDueDate == nil || o.FirstDueDate.IsZero() {
		return fmt.Errorf("%w: first_due_date is required", ErrInvalidSchedule)
	}

	amounts, err := schedule.SplitAmount(*o.TotalAmount, *o.InstallmentCount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	for _, amount := range amounts {
		if amount.IsZero() {
			return fmt.Errorf("%w: total_amount is too small for %d installments", ErrInvalidSchedule, *o.InstallmentCount)
		}
	}
	return nil
}
