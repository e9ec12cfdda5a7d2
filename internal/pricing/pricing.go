// Package pricing does money arithmetic in integer cents.
package pricing

import (
	"fmt"
	"math"
)

func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

func Sum(prices []float64) int64 {
	var total int64
	for _, p := range prices {
		total += ToCents(p)
	}
	return total
}

// ApplyPercent returns pct percent of cents, rounded half up.
func ApplyPercent(cents int64, pct float64) int64 {
	if pct <= 0 || cents <= 0 {
		return 0
	}
	if pct > 100 {
		pct = 100
	}
	return int64(math.Floor(float64(cents)*pct/100 + 0.5))
}

type Totals struct {
	PrixServices float64 `json:"prix_services"`
	Reduction    float64 `json:"reduction"`
	PrixFinal    float64 `json:"prix_final"`
}

// Compute sums item prices and subtracts the discount percentage.
func Compute(prices []float64, discountPct float64) (Totals, error) {
	if discountPct < 0 || discountPct > 100 {
		return Totals{}, fmt.Errorf("discount percentage out of range: %v", discountPct)
	}
	for _, p := range prices {
		if p < 0 {
			return Totals{}, fmt.Errorf("negative price: %v", p)
		}
	}
	subtotal := Sum(prices)
	reduction := ApplyPercent(subtotal, discountPct)
	return Totals{
		PrixServices: FromCents(subtotal),
		Reduction:    FromCents(reduction),
		PrixFinal:    FromCents(subtotal - reduction),
	}, nil
}

// LineTotal is unit price times quantity.
func LineTotal(unit float64, quantity int) float64 {
	return FromCents(ToCents(unit) * int64(quantity))
}
