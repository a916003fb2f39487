package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository/repotest"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"github.com/stretchr/testify/require"
)

func newTestServices(store *repotest.Store) *Services {
	return NewServices(store.Repositories(), nil, &config.Config{RecurringHorizonMonths: 1}, nil)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func monthPtr(s string) *schedule.Month {
	m, err := schedule.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return &m
}

func finiteInput(kind, total string, count, interval int, first time.Time) CreateObligationInput {
	return CreateObligationInput{
		Kind:             kind,
		TotalAmount:      dec(total),
		InstallmentCount: intPtr(count),
		IntervalDays:     intPtr(interval),
		FirstDueDate:     &first,
	}
}

func recurringInput(amount string, dueDay int, start string, end *schedule.Month) CreateObligationInput {
	return CreateObligationInput{
		Kind:            models.KindCostFixed,
		RecurringAmount: dec(amount),
		DueDay:          intPtr(dueDay),
		StartMonth:      monthPtr(start),
		EndMonth:        end,
	}
}

// createObligation stores a pending obligation and returns its id
func createObligation(t *testing.T, svcs *Services, input CreateObligationInput) uint {
	t.Helper()
	o, err := svcs.Obligation.Create(context.Background(), input)
	require.NoError(t, err)
	return o.ID
}

func amountsOf(installments []models.Installment) []string {
	out := make([]string, len(installments))
	for i := range installments {
		out[i] = installments[i].Amount.StringFixed(2)
	}
	return out
}

func dueDatesOf(installments []models.Installment) []string {
	out := make([]string, len(installments))
	for i := range installments {
		out[i] = installments[i].DueDate.Format(models.DateLayout)
	}
	return out
}

func ptrTime(t time.Time) *time.Time { return &t }

func payWith(ctx context.Context, paidOn time.Time) func(*statemachine.InstallmentFSM, *models.Installment) error {
	return func(m *statemachine.InstallmentFSM, _ *models.Installment) error {
		return m.Pay(ctx, paidOn, nil)
	}
}

func cancelWith(ctx context.Context) func(*statemachine.InstallmentFSM, *models.Installment) error {
	return func(m *statemachine.InstallmentFSM, _ *models.Installment) error {
		return m.Cancel(ctx)
	}
}
