package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIntervalDueDates(t *testing.T) {
	dates, err := IntervalDueDates(date(2025, 1, 1), 30, 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2025, 1, 1),
		date(2025, 1, 31),
		date(2025, 3, 2),
	}, dates)
}

func TestIntervalDueDates_NormalizesTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	dates, err := IntervalDueDates(time.Date(2025, 6, 10, 23, 30, 0, 0, loc), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2025, 6, 10), date(2025, 6, 17)}, dates)
}

func TestIntervalDueDates_InvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		first    time.Time
		interval int
		count    int
	}{
		{"missing first date", time.Time{}, 30, 3},
		{"zero interval", date(2025, 1, 1), 0, 3},
		{"negative interval", date(2025, 1, 1), -1, 3},
		{"zero count", date(2025, 1, 1), 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IntervalDueDates(tt.first, tt.interval, tt.count)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestMonthlySeries_ClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name     string
		start    Month
		expected time.Time
	}{
		{"leap year february", NewMonth(2024, time.February), date(2024, 2, 29)},
		{"non-leap february", NewMonth(2023, time.February), date(2023, 2, 28)},
		{"thirty day month", NewMonth(2025, time.April), date(2025, 4, 30)},
		{"thirty one day month", NewMonth(2025, time.January), date(2025, 1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := MonthlySeries{Start: tt.start, DueDay: 31}
			got, ok := series.At(1)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMonthlySeries_DueDayRecoversAfterShortMonth(t *testing.T) {
	end := NewMonth(2024, time.April)
	series := MonthlySeries{Start: NewMonth(2024, time.January), DueDay: 31, End: &end}

	assert.Equal(t, []time.Time{
		date(2024, 1, 31),
		date(2024, 2, 29),
		date(2024, 3, 31),
		date(2024, 4, 30),
	}, series.Through(NewMonth(2030, time.January)))
}

func TestMonthlySeries_BoundedThrough(t *testing.T) {
	end := NewMonth(2025, time.March)
	series := MonthlySeries{Start: NewMonth(2025, time.January), DueDay: 5, End: &end}

	n, ok := series.Len()
	require.True(t, ok)
	assert.Equal(t, 3, n)

	assert.Equal(t, []time.Time{
		date(2025, 1, 5),
		date(2025, 2, 5),
		date(2025, 3, 5),
	}, series.Through(NewMonth(2026, time.January)))

	_, ok = series.At(4)
	assert.False(t, ok)
}

func TestMonthlySeries_OpenEndedIsBoundedByHorizon(t *testing.T) {
	series := MonthlySeries{Start: NewMonth(2025, time.November), DueDay: 15}

	_, bounded := series.Len()
	assert.False(t, bounded)
	assert.True(t, series.OpenEnded())

	dates := series.Through(NewMonth(2026, time.February))
	assert.Equal(t, []time.Time{
		date(2025, 11, 15),
		date(2025, 12, 15),
		date(2026, 1, 15),
		date(2026, 2, 15),
	}, dates)

	assert.Empty(t, series.Through(NewMonth(2025, time.October)))
}

func TestMonthlySeries_PositionIsDeterministic(t *testing.T) {
	series := MonthlySeries{Start: NewMonth(2023, time.December), DueDay: 30}

	var fromIterator []time.Time
	for k, d := range series.All() {
		if k > 6 {
			break
		}
		fromIterator = append(fromIterator, d)
	}

	// restarting the sequence, or jumping straight to a position, yields the same dates
	for k := 6; k >= 1; k-- {
		d, ok := series.At(k)
		require.True(t, ok)
		assert.Equal(t, fromIterator[k-1], d)
	}
	assert.Equal(t, date(2024, 2, 29), fromIterator[2])
}

func TestMonthlySeries_Validate(t *testing.T) {
	before := NewMonth(2024, time.December)

	assert.NoError(t, MonthlySeries{Start: NewMonth(2025, 1), DueDay: 1}.Validate())
	assert.ErrorIs(t, MonthlySeries{DueDay: 1}.Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, MonthlySeries{Start: NewMonth(2025, 1), DueDay: 0}.Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, MonthlySeries{Start: NewMonth(2025, 1), DueDay: 32}.Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, MonthlySeries{Start: NewMonth(2025, 1), DueDay: 1, End: &before}.Validate(), ErrInvalidSchedule)
}

func TestMonth_Arithmetic(t *testing.T) {
	m := NewMonth(2025, time.November)

	assert.Equal(t, NewMonth(2026, time.January), m.AddMonths(2))
	assert.Equal(t, NewMonth(2024, time.December), m.AddMonths(-11))
	assert.Equal(t, 14, m.MonthsUntil(NewMonth(2027, time.January)))
	assert.True(t, m.Before(NewMonth(2025, time.December)))
	assert.True(t, m.After(NewMonth(2025, time.October)))
	assert.Equal(t, "2025-11", m.String())
}

func TestMonth_TextAndSQLRoundTrip(t *testing.T) {
	var m Month
	require.NoError(t, m.UnmarshalText([]byte("2024-02")))
	assert.Equal(t, NewMonth(2024, time.February), m)

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02", v)

	var scanned Month
	require.NoError(t, scanned.Scan([]byte("2031-12")))
	assert.Equal(t, NewMonth(2031, time.December), scanned)

	assert.ErrorIs(t, m.UnmarshalText([]byte("2024/02")), ErrInvalidSchedule)
	assert.Error(t, scanned.Scan(42))
}
