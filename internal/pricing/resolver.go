// Package pricing implements the pure pricing computations of the
// engagement engine: per-option override resolution, totals aggregation
// and VAT treatment. Nothing in this package performs I/O or fails;
// invalid input is clamped or replaced by catalog defaults.
package pricing

import (
	"math"

	"github.com/washandgo/engagement-api/internal/domain"
)

// EffectiveOption is the resolved pricing input for one selected option
// after applying the engagement's override on top of catalog defaults.
type EffectiveOption struct {
	Quantity    int
	DurationMin int
	UnitPrice   float64
}

// ResolveOverride returns the effective quantity, duration and unit price
// for a catalog option under an optional per-engagement override.
// Quantity is clamped to at least 1, duration and unit price to at least
// 0; a non-finite unit price counts as absent and falls back to the
// catalog value.
func ResolveOverride(option *domain.ServiceOption, override *domain.OptionOverride) EffectiveOption {
	eff := EffectiveOption{
		Quantity:    1,
		DurationMin: option.DefaultDurationMin,
		UnitPrice:   option.UnitPrice,
	}
	if override == nil {
		return eff
	}

	if override.Quantity != nil && *override.Quantity > 1 {
		eff.Quantity = *override.Quantity
	}
	if override.DurationMin != nil {
		eff.DurationMin = *override.DurationMin
		if eff.DurationMin < 0 {
			eff.DurationMin = 0
		}
	}
	if override.UnitPrice != nil && isFinite(*override.UnitPrice) {
		eff.UnitPrice = math.Max(0, *override.UnitPrice)
	}
	return eff
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
