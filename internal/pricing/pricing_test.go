package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washandgo/engagement-api/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func washService() domain.Service {
	return domain.Service{
		BaseModel: domain.BaseModel{ID: "svc-1"},
		Name:      "Lavage extérieur",
		Options: []domain.ServiceOption{
			{
				BaseModel:          domain.BaseModel{ID: "opt-wash"},
				Label:              "Lavage",
				UnitPrice:          25.00,
				DefaultDurationMin: 30,
			},
			{
				BaseModel:          domain.BaseModel{ID: "opt-wax"},
				Label:              "Cire",
				UnitPrice:          15.50,
				DefaultDurationMin: 20,
			},
		},
	}
}

func TestResolveOverride(t *testing.T) {
	option := &domain.ServiceOption{
		BaseModel:          domain.BaseModel{ID: "opt-wash"},
		UnitPrice:          25.00,
		DefaultDurationMin: 30,
	}

	tests := []struct {
		name     string
		override *domain.OptionOverride
		want     EffectiveOption
	}{
		{
			name:     "nil override uses catalog defaults",
			override: nil,
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
		{
			name:     "empty override uses catalog defaults",
			override: &domain.OptionOverride{},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
		{
			name:     "full override wins",
			override: &domain.OptionOverride{Quantity: intPtr(3), DurationMin: intPtr(45), UnitPrice: floatPtr(20.00)},
			want:     EffectiveOption{Quantity: 3, DurationMin: 45, UnitPrice: 20.00},
		},
		{
			name:     "quantity below one clamps to one",
			override: &domain.OptionOverride{Quantity: intPtr(0)},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
		{
			name:     "negative quantity clamps to one",
			override: &domain.OptionOverride{Quantity: intPtr(-4)},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
		{
			name:     "negative duration clamps to zero",
			override: &domain.OptionOverride{DurationMin: intPtr(-10)},
			want:     EffectiveOption{Quantity: 1, DurationMin: 0, UnitPrice: 25.00},
		},
		{
			name:     "zero duration is kept",
			override: &domain.OptionOverride{DurationMin: intPtr(0)},
			want:     EffectiveOption{Quantity: 1, DurationMin: 0, UnitPrice: 25.00},
		},
		{
			name:     "negative price clamps to zero",
			override: &domain.OptionOverride{UnitPrice: floatPtr(-5)},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 0},
		},
		{
			name:     "NaN price falls back to catalog",
			override: &domain.OptionOverride{UnitPrice: floatPtr(math.NaN())},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
		{
			name:     "infinite price falls back to catalog",
			override: &domain.OptionOverride{UnitPrice: floatPtr(math.Inf(1))},
			want:     EffectiveOption{Quantity: 1, DurationMin: 30, UnitPrice: 25.00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOverride(option, tt.override))
		})
	}
}

func TestComputeTotalsDefaults(t *testing.T) {
	// Option 25.00 / 30 min, no override.
	catalog := NewCatalog([]domain.Service{washService()})
	e := &domain.Engagement{
		ServiceID: "svc-1",
		OptionIDs: domain.StringList{"opt-wash"},
	}

	totals := ComputeTotals(e, catalog)
	assert.Equal(t, 25.00, totals.Price)
	assert.Equal(t, 30, totals.DurationMin)
	assert.Empty(t, totals.StaleOptionIDs)
}

func TestComputeTotalsQuantityAndPriceOverride(t *testing.T) {
	catalog := NewCatalog([]domain.Service{washService()})
	e := &domain.Engagement{
		ServiceID: "svc-1",
		OptionIDs: domain.StringList{"opt-wash"},
		OptionOverrides: domain.OverrideMap{
			"opt-wash": {Quantity: intPtr(2), UnitPrice: floatPtr(20.00)},
		},
	}

	totals := ComputeTotals(e, catalog)
	assert.Equal(t, 40.00, totals.Price)
	assert.Equal(t, 60, totals.DurationMin)
}

func TestComputeTotalsAccumulatesAcrossOptions(t *testing.T) {
	catalog := NewCatalog([]domain.Service{washService()})
	e := &domain.Engagement{
		ServiceID:        "svc-1",
		OptionIDs:        domain.StringList{"opt-wash", "opt-wax"},
		AdditionalCharge: 5.00,
	}

	totals := ComputeTotals(e, catalog)
	assert.Equal(t, 40.50, Round2(totals.Price))
	assert.Equal(t, 50, totals.DurationMin)
	assert.Equal(t, 5.00, totals.Surcharge)
}

func TestComputeTotalsStaleOptionSkippedAndFlagged(t *testing.T) {
	catalog := NewCatalog([]domain.Service{washService()})
	e := &domain.Engagement{
		ServiceID: "svc-1",
		OptionIDs: domain.StringList{"opt-wash", "opt-gone"},
		OptionOverrides: domain.OverrideMap{
			"opt-gone": {UnitPrice: floatPtr(999)},
		},
	}

	totals := ComputeTotals(e, catalog)
	assert.Equal(t, 25.00, totals.Price)
	assert.Equal(t, 30, totals.DurationMin)
	assert.Equal(t, []string{"opt-gone"}, totals.StaleOptionIDs)
}

func TestComputeTotalsBasePriceFallback(t *testing.T) {
	svc := washService()
	svc.BasePrice = floatPtr(80.00)
	svc.BaseDurationMin = intPtr(90)
	catalog := NewCatalog([]domain.Service{svc})

	t.Run("no selected options", func(t *testing.T) {
		e := &domain.Engagement{ServiceID: "svc-1"}
		totals := ComputeTotals(e, catalog)
		assert.Equal(t, 80.00, totals.Price)
		assert.Equal(t, 90, totals.DurationMin)
	})

	t.Run("only stale options", func(t *testing.T) {
		e := &domain.Engagement{
			ServiceID: "svc-1",
			OptionIDs: domain.StringList{"opt-gone"},
		}
		totals := ComputeTotals(e, catalog)
		assert.Equal(t, 80.00, totals.Price)
		assert.Equal(t, 90, totals.DurationMin)
		assert.Equal(t, []string{"opt-gone"}, totals.StaleOptionIDs)
	})

	t.Run("fallback not used once an option resolves", func(t *testing.T) {
		e := &domain.Engagement{
			ServiceID: "svc-1",
			OptionIDs: domain.StringList{"opt-wash"},
		}
		totals := ComputeTotals(e, catalog)
		assert.Equal(t, 25.00, totals.Price)
		assert.Equal(t, 30, totals.DurationMin)
	})
}

func TestComputeTotalsUnknownService(t *testing.T) {
	catalog := NewCatalog(nil)
	e := &domain.Engagement{
		ServiceID:        "svc-missing",
		OptionIDs:        domain.StringList{"opt-a", "opt-b"},
		AdditionalCharge: 12.50,
	}

	totals := ComputeTotals(e, catalog)
	assert.Zero(t, totals.Price)
	assert.Zero(t, totals.DurationMin)
	assert.Equal(t, 12.50, totals.Surcharge)
	assert.Equal(t, []string{"opt-a", "opt-b"}, totals.StaleOptionIDs)
}

func TestComputeTotalsPriceNeverNegative(t *testing.T) {
	catalog := NewCatalog([]domain.Service{washService()})
	e := &domain.Engagement{
		ServiceID: "svc-1",
		OptionIDs: domain.StringList{"opt-wash", "opt-wax"},
		OptionOverrides: domain.OverrideMap{
			"opt-wash": {UnitPrice: floatPtr(-100), Quantity: intPtr(-3)},
			"opt-wax":  {UnitPrice: floatPtr(math.Inf(-1))},
		},
	}

	totals := ComputeTotals(e, catalog)
	assert.GreaterOrEqual(t, totals.Price, 0.0)
	assert.Equal(t, 15.50, totals.Price)
}

func TestDisplayDuration(t *testing.T) {
	totals := Totals{DurationMin: 30}

	e := &domain.Engagement{Status: domain.StatusPlanifie}
	assert.Equal(t, 30, DisplayDuration(e, totals))

	e = &domain.Engagement{Status: domain.StatusRealise, RealizedDurationMin: intPtr(45)}
	assert.Equal(t, 45, DisplayDuration(e, totals))

	e = &domain.Engagement{Status: domain.StatusRealise, RealizedDurationMin: intPtr(0)}
	assert.Equal(t, 30, DisplayDuration(e, totals))

	e = &domain.Engagement{Status: domain.StatusPlanifie, RealizedDurationMin: intPtr(45)}
	assert.Equal(t, 30, DisplayDuration(e, totals))
}

func TestResolveVatEnabled(t *testing.T) {
	company := &domain.Company{VatEnabled: true, VatRate: 20}

	tests := []struct {
		name     string
		override domain.VatOverride
		company  *domain.Company
		global   bool
		want     bool
	}{
		{"explicit enabled wins", domain.VatEnabled, &domain.Company{VatEnabled: false}, false, true},
		{"explicit disabled wins", domain.VatDisabled, company, true, false},
		{"inherit uses company", domain.VatInherit, company, false, true},
		{"inherit without company uses global", domain.VatInherit, nil, true, true},
		{"inherit without company disabled global", domain.VatInherit, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVatEnabled(tt.override, tt.company, tt.global))
		})
	}
}

func TestComputeVat(t *testing.T) {
	// subtotal 100.00, rate 20% with inherit on an enabled company.
	vat, total := ComputeVat(100.00, 20, true)
	assert.Equal(t, 20.00, vat)
	assert.Equal(t, 120.00, total)

	vat, total = ComputeVat(100.00, 20, false)
	assert.Zero(t, vat)
	assert.Equal(t, 100.00, total)

	vat, total = ComputeVat(33.335, 20, true)
	assert.InDelta(t, 6.67, vat, 0.001)
	assert.InDelta(t, 40.005, total, 0.001)
}

func TestVatRateFor(t *testing.T) {
	assert.Equal(t, 10.0, VatRateFor(&domain.Company{VatRate: 10}, 20))
	assert.Equal(t, 20.0, VatRateFor(&domain.Company{}, 20))
	assert.Equal(t, 20.0, VatRateFor(nil, 20))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 40.50, Round2(40.499999999999996))
	assert.Equal(t, 0.1, Round2(0.10000000000000002))
	require.Equal(t, 2.68, Round2(2.675000001))
}
