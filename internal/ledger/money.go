package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a fixed-point currency amount in hundredths of the base unit.
// All stored amounts are cents; floats never touch persisted money.
type Cents int64

// ParseCents converts a canonical "123.45" string into cents. The input is
// expected to already be normalized by the verify package (two decimal
// places, positive); anything else is rejected.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("parse amount %q: more than 2 decimal places", s)
	}
	return Cents(d.Shift(2).IntPart()), nil
}

// String renders cents as a two-decimal string, e.g. 10050 -> "100.50".
func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// Decimal returns the amount as an exact decimal value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float returns the amount as a float64 for percentage math only.
func (c Cents) Float() float64 {
	return float64(c) / 100
}
