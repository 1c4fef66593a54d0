package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/washandgo/engagement-api/internal/domain"
)

// ResolveVatEnabled applies the three-way VAT precedence: an explicit
// engagement override wins, an inherit override defers to the company
// default, and when no company is resolvable the global default applies.
func ResolveVatEnabled(override domain.VatOverride, company *domain.Company, globalDefault bool) bool {
	switch override {
	case domain.VatEnabled:
		return true
	case domain.VatDisabled:
		return false
	}
	if company != nil {
		return company.VatEnabled
	}
	return globalDefault
}

// ComputeVat returns the VAT amount and the total including VAT for a
// subtotal at the given percentage rate. The VAT amount is rounded to 2
// decimals; when VAT is disabled both the amount is zero and the total
// equals the subtotal.
func ComputeVat(subtotal, rate float64, enabled bool) (vatAmount, totalWithVat float64) {
	if !enabled {
		return 0, subtotal
	}
	amount := decimal.NewFromFloat(subtotal).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	vatAmount, _ = amount.Float64()
	return vatAmount, subtotal + vatAmount
}

// VatRateFor returns the VAT rate to apply for a company, falling back to
// the global configured rate when the engagement has no company.
func VatRateFor(company *domain.Company, globalRate float64) float64 {
	if company != nil && company.VatRate > 0 {
		return company.VatRate
	}
	if globalRate < 0 {
		return 0
	}
	return globalRate
}
