package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision of the smallest currency unit (cents)
const CurrencyPlaces = 2

// SplitAmount divides total into n installments at currency precision.
// Every installment gets floor(total/n); the leftover units are added one
// cent at a time to the first installments, so the parts always sum to total.
func SplitAmount(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: installment count must be at least 1", ErrInvalidSchedule)
	}

	units := total.Shift(CurrencyPlaces)
	if !units.IsInteger() {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidSchedule, total, CurrencyPlaces)
	}
	if !units.BigInt().IsInt64() {
		return nil, fmt.Errorf("%w: amount %s is out of range", ErrInvalidSchedule, total)
	}

	cents := units.IntPart()
	count := int64(n)
	base := cents / count
	if cents%count != 0 && cents < 0 {
		base--
	}
	remainder := cents - base*count

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		parts[i] = decimal.New(amount, -CurrencyPlaces)
	}
	return parts, nil
}
