package schedule

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar year-month such as 2025-01
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth builds a Month, normalizing out-of-range months (13 -> January of next year)
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q must use YYYY-MM", ErrInvalidSchedule, s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether the month is unset
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// AddMonths returns the month n months after m (n may be negative)
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+time.Month(n))
}

// MonthsUntil returns how many months separate m from other (negative if other is earlier)
func (m Month) MonthsUntil(other Month) int {
	return (other.Year-m.Year)*12 + int(other.Month) - int(m.Month)
}

func (m Month) Before(other Month) bool {
	return m.MonthsUntil(other) > 0
}

func (m Month) After(other Month) bool {
	return m.MonthsUntil(other) < 0
}

// DaysIn returns the number of days in the month
func (m Month) DaysIn() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the given day of the month, clamped to the last day
// (day 31 in February yields the 28th or the 29th).
func (m Month) Day(day int) time.Time {
	if last := m.DaysIn(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the month as YYYY-MM
func (m Month) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads a YYYY-MM column
func (m *Month) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Month{}
		return nil
	case string:
		return m.UnmarshalText([]byte(v))
	case []byte:
		return m.UnmarshalText(v)
	case time.Time:
		*m = MonthOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into schedule.Month", src)
	}
}
