package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallmentGenerator_FiniteSchedule(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, finiteInput(models.KindBillReceivable, "450.00", 3, 30, date(2025, 1, 1)))

	obligation, err := svcs.Generator.Generate(ctx, id, date(2024, 12, 15))
	require.NoError(t, err)

	assert.Equal(t, []string{"150.00", "150.00", "150.00"}, amountsOf(obligation.Installments))
	assert.Equal(t, []string{"2025-01-01", "2025-01-31", "2025-03-02"}, dueDatesOf(obligation.Installments))
	for i, inst := range obligation.Installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, models.StatusPending, inst.Status)
		assert.Nil(t, inst.PaidDate)
	}
	assert.Equal(t, models.StatusPending, obligation.Status)
}

func TestInstallmentGenerator_RemainderGoesToFirstInstallments(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)

	id := createObligation(t, svcs, finiteInput(models.KindBillPayable, "100.00", 3, 7, date(2025, 5, 1)))

	obligation, err := svcs.Generator.Generate(context.Background(), id, date(2025, 4, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"33.34", "33.33", "33.33"}, amountsOf(obligation.Installments))
	sum := decimal.Zero
	for _, inst := range obligation.Installments {
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("100")))
}

func TestInstallmentGenerator_BoundedRecurring(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)

	id := createObligation(t, svcs, recurringInput("500.00", 5, "2025-01", monthPtr("2025-03")))

	// generation materializes the whole bounded series regardless of the current month
	obligation, err := svcs.Generator.Generate(context.Background(), id, date(2024, 11, 20))
	require.NoError(t, err)

	assert.Equal(t, []string{"500.00", "500.00", "500.00"}, amountsOf(obligation.Installments))
	assert.Equal(t, []string{"2025-01-05", "2025-02-05", "2025-03-05"}, dueDatesOf(obligation.Installments))
}

func TestInstallmentGenerator_RecurringClampsDueDay(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)

	id := createObligation(t, svcs, recurringInput("80.00", 31, "2024-01", monthPtr("2024-04")))

	obligation, err := svcs.Generator.Generate(context.Background(), id, date(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dueDatesOf(obligation.Installments))
}

func TestInstallmentGenerator_OpenEndedUsesHorizon(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)

	id := createObligation(t, svcs, recurringInput("1200.00", 10, "2025-01", nil))

	obligation, err := svcs.Generator.Generate(context.Background(), id, date(2025, 3, 15))
	require.NoError(t, err)

	// current month plus one month of horizon
	assert.Equal(t, []string{"2025-01-10", "2025-02-10", "2025-03-10", "2025-04-10"}, dueDatesOf(obligation.Installments))
}

func TestInstallmentGenerator_OpenEndedStartingInTheFuture(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)

	id := createObligation(t, svcs, recurringInput("300.00", 1, "2026-06", nil))

	obligation, err := svcs.Generator.Generate(context.Background(), id, date(2025, 1, 15))
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-06-01"}, dueDatesOf(obligation.Installments))
}

func TestInstallmentGenerator_AlreadyGenerated(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, finiteInput(models.KindCostVariable, "90.00", 3, 10, date(2025, 1, 1)))

	_, err := svcs.Generator.Generate(ctx, id, date(2025, 1, 1))
	require.NoError(t, err)

	_, err = svcs.Generator.Generate(ctx, id, date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrAlreadyGenerated)
	assert.Equal(t, 3, store.CountInstallments(id))
}

func TestInstallmentGenerator_ConcurrentGenerationPersistsOnce(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, finiteInput(models.KindBillReceivable, "1000.00", 4, 30, date(2025, 1, 1)))

	// both callers pass the existence check before either one writes
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.BeforeInsert = func() {
		arrived.Done()
		arrived.Wait()
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svcs.Generator.Generate(ctx, id, date(2025, 1, 1))
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrAlreadyGenerated):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 4, store.CountInstallments(id))
}

func TestInstallmentGenerator_RejectsCancelledObligation(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, finiteInput(models.KindBillReceivable, "100.00", 1, 1, date(2025, 1, 1)))
	_, err := svcs.Obligation.Cancel(ctx, id, date(2025, 1, 1))
	require.NoError(t, err)

	_, err = svcs.Generator.Generate(ctx, id, date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 0, store.CountInstallments(id))
}

func TestInstallmentGenerator_NotFound(t *testing.T) {
	svcs := newTestServices(repotest.NewStore())

	_, err := svcs.Generator.Generate(context.Background(), 42, date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInstallmentGenerator_BuildIsDeterministic(t *testing.T) {
	svcs := newTestServices(repotest.NewStore())
	first := date(2025, 1, 1)
	obligation := &models.Obligation{
		Kind:             models.KindBillPayable,
		TotalAmount:      dec("1000.01"),
		InstallmentCount: intPtr(7),
		IntervalDays:     intPtr(15),
		FirstDueDate:     &first,
	}

	a, err := svcs.Generator.Build(obligation, svcs.Generator.Horizon(obligation, first))
	require.NoError(t, err)
	b, err := svcs.Generator.Build(obligation, svcs.Generator.Horizon(obligation, first))
	require.NoError(t, err)

	assert.Equal(t, amountsOf(a), amountsOf(b))
	assert.Equal(t, dueDatesOf(a), dueDatesOf(b))
}

func TestInstallmentGenerator_Extend(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, recurringInput("250.00", 15, "2025-01", nil))
	_, err := svcs.Generator.Generate(ctx, id, date(2025, 1, 10))
	require.NoError(t, err)
	require.Equal(t, 2, store.CountInstallments(id))

	added, err := svcs.Generator.Extend(ctx, id, date(2025, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// extending again within the same horizon adds nothing
	added, err = svcs.Generator.Extend(ctx, id, date(2025, 4, 30))
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	obligation, err := svcs.Obligation.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-15", "2025-02-15", "2025-03-15", "2025-04-15", "2025-05-15"}, dueDatesOf(obligation.Installments))
	for i, inst := range obligation.Installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
	}
}

func TestInstallmentGenerator_ExtendRejectsFiniteObligation(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	id := createObligation(t, svcs, finiteInput(models.KindBillPayable, "10.00", 1, 1, date(2025, 1, 1)))
	_, err := svcs.Generator.Generate(ctx, id, date(2025, 1, 1))
	require.NoError(t, err)

	_, err = svcs.Generator.Extend(ctx, id, date(2025, 6, 1))
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestInstallmentGenerator_ExtendAll(t *testing.T) {
	store := repotest.NewStore()
	svcs := newTestServices(store)
	ctx := context.Background()

	rent := createObligation(t, svcs, recurringInput("900.00", 1, "2025-01", nil))
	internet := createObligation(t, svcs, recurringInput("45.50", 20, "2025-01", nil))
	bounded := createObligation(t, svcs, recurringInput("10.00", 1, "2025-01", monthPtr("2025-02")))
	ungenerated := createObligation(t, svcs, recurringInput("5.00", 1, "2025-01", nil))

	for _, id := range []uint{rent, internet, bounded} {
		_, err := svcs.Generator.Generate(ctx, id, date(2025, 1, 5))
		require.NoError(t, err)
	}

	added, err := svcs.Generator.ExtendAll(ctx, date(2025, 3, 1))
	require.NoError(t, err)
	// March and April for each open-ended obligation
	assert.Equal(t, 4, added)
	assert.Equal(t, 4, store.CountInstallments(rent))
	assert.Equal(t, 4, store.CountInstallments(internet))
	assert.Equal(t, 2, store.CountInstallments(bounded))
	assert.Equal(t, 0, store.CountInstallments(ungenerated))
}
