// Package schedule holds the pure date and amount arithmetic behind installment plans.
package schedule

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrInvalidSchedule is returned for malformed schedule inputs
var ErrInvalidSchedule = errors.New("invalid schedule")

// DateOf normalizes t to its calendar date at UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IntervalDueDates returns count due dates spaced intervalDays apart, starting at first.
// Installment k (1-based) is due first + (k-1)*intervalDays.
func IntervalDueDates(first time.Time, intervalDays, count int) ([]time.Time, error) {
	if first.IsZero() {
		return nil, fmt.Errorf("%w: first due date is required", ErrInvalidSchedule)
	}
	if intervalDays < 1 {
		return nil, fmt.Errorf("%w: interval must be at least 1 day", ErrInvalidSchedule)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: installment count must be at least 1", ErrInvalidSchedule)
	}

	start := DateOf(first)
	dates := make([]time.Time, count)
	for k := range dates {
		dates[k] = start.AddDate(0, 0, k*intervalDays)
	}
	return dates, nil
}

// MonthlySeries is a calendar-month cadence: one date per month on DueDay,
// from Start through End inclusive, or without end when End is nil.
//
// The series holds no cursor; At(k) always yields the same date for the same k.
type MonthlySeries struct {
	Start  Month
	DueDay int
	End    *Month
}

// Validate checks the series parameters
func (s MonthlySeries) Validate() error {
	if s.Start.IsZero() {
		return fmt.Errorf("%w: start month is required", ErrInvalidSchedule)
	}
	if s.DueDay < 1 || s.DueDay > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidSchedule)
	}
	if s.End != nil && s.End.Before(s.Start) {
		return fmt.Errorf("%w: end month %s precedes start month %s", ErrInvalidSchedule, s.End, s.Start)
	}
	return nil
}

// OpenEnded reports whether the series has no end month
func (s MonthlySeries) OpenEnded() bool {
	return s.End == nil
}

// Len returns the number of dates in a bounded series; ok is false when open-ended
func (s MonthlySeries) Len() (n int, ok bool) {
	if s.End == nil {
		return 0, false
	}
	return s.Start.MonthsUntil(*s.End) + 1, true
}

// At returns the k-th (1-based) date of the series
func (s MonthlySeries) At(k int) (time.Time, bool) {
	if k < 1 {
		return time.Time{}, false
	}
	if n, bounded := s.Len(); bounded && k > n {
		return time.Time{}, false
	}
	return s.Start.AddMonths(k - 1).Day(s.DueDay), true
}

// All iterates the series positions and dates. Open-ended series never stop on
// their own; the consumer must break.
func (s MonthlySeries) All() iter.Seq2[int, time.Time] {
	return func(yield func(int, time.Time) bool) {
		for k := 1; ; k++ {
			date, ok := s.At(k)
			if !ok || !yield(k, date) {
				return
			}
		}
	}
}

// Through returns every date of the series up to and including the horizon month
// (or End, whichever comes first).
func (s MonthlySeries) Through(horizon Month) []time.Time {
	last := horizon
	if s.End != nil && s.End.Before(last) {
		last = *s.End
	}
	if last.Before(s.Start) {
		return nil
	}

	dates := make([]time.Time, 0, s.Start.MonthsUntil(last)+1)
	for _, date := range s.All() {
		if MonthOf(date).After(last) {
			break
		}
		dates = append(dates, date)
	}
	return dates
}
