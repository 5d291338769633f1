// Package quant holds the numeric boundary helpers shared by the strategy
// and the venue client. Anything that leaves or enters the process as a
// decimal string goes through here.
package quant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Truncate cuts x to the given number of decimal digits, toward zero.
// Quote prices and sizes are truncated, never rounded: rounding up on the
// aggressive side could cross the intended price. Truncate(x, n) <= x for
// any non-negative x.
func Truncate(x float64, digits int32) float64 {
	f, _ := decimal.NewFromFloat(x).Truncate(digits).Float64()
	return f
}

// ParseFloat parses a venue decimal string (e.g. "100.25000000").
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// FormatAmount renders a price or quantity the way the venue expects it:
// plain decimal notation, truncated to the given precision.
func FormatAmount(x float64, digits int32) string {
	return decimal.NewFromFloat(x).Truncate(digits).String()
}
