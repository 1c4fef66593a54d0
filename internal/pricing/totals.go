package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/washandgo/engagement-api/internal/domain"
)

// CatalogLookup resolves catalog services by id. Implementations must
// treat the catalog as an immutable snapshot for the duration of a call.
type CatalogLookup interface {
	ServiceByID(id string) (*domain.Service, bool)
}

// Catalog is a map-backed CatalogLookup over a service slice.
type Catalog struct {
	services map[string]*domain.Service
}

// NewCatalog builds a lookup over a catalog snapshot.
func NewCatalog(services []domain.Service) *Catalog {
	c := &Catalog{services: make(map[string]*domain.Service, len(services))}
	for i := range services {
		c.services[services[i].ID] = &services[i]
	}
	return c
}

// ServiceByID implements CatalogLookup
func (c *Catalog) ServiceByID(id string) (*domain.Service, bool) {
	svc, ok := c.services[id]
	return svc, ok
}

// Totals is the aggregation of an engagement's pricing inputs. Price is
// the raw accumulated option total (unrounded; round at display time with
// Round2), Surcharge is the engagement's additional charge passed through
// unchanged so callers can show it as its own line. StaleOptionIDs lists
// selected ids that no longer resolve in the catalog: they contribute
// nothing to the totals but stay in storage, surfaced here only as a
// data-quality flag.
type Totals struct {
	Price          float64
	DurationMin    int
	Surcharge      float64
	StaleOptionIDs []string
}

// ComputeTotals aggregates price and duration over the engagement's
// selected options, resolving each against its override. The result
// depends only on the engagement and the catalog snapshot passed in.
func ComputeTotals(e *domain.Engagement, catalog CatalogLookup) Totals {
	totals := Totals{Surcharge: e.AdditionalCharge}

	service, ok := catalog.ServiceByID(e.ServiceID)
	if !ok {
		totals.StaleOptionIDs = append(totals.StaleOptionIDs, e.OptionIDs...)
		return totals
	}

	options := make(map[string]*domain.ServiceOption, len(service.Options))
	for i := range service.Options {
		options[service.Options[i].ID] = &service.Options[i]
	}

	matched := 0
	for _, id := range e.OptionIDs {
		option, ok := options[id]
		if !ok {
			totals.StaleOptionIDs = append(totals.StaleOptionIDs, id)
			continue
		}
		matched++

		var override *domain.OptionOverride
		if ov, ok := e.OptionOverrides[id]; ok {
			override = &ov
		}
		eff := ResolveOverride(option, override)
		totals.Price += eff.UnitPrice * float64(eff.Quantity)
		totals.DurationMin += eff.DurationMin * eff.Quantity
	}

	// Flat-priced services carry their price/duration on the service
	// itself; used only when no selected option resolved.
	if matched == 0 {
		if service.BasePrice != nil {
			totals.Price = *service.BasePrice
		}
		if service.BaseDurationMin != nil {
			totals.DurationMin = *service.BaseDurationMin
		}
	}

	return totals
}

// DisplayDuration returns the duration to show for an engagement: the
// realized duration once the service is completed and one was recorded,
// otherwise the estimated duration from the totals.
func DisplayDuration(e *domain.Engagement, totals Totals) int {
	if e.Status == domain.StatusRealise && e.RealizedDurationMin != nil && *e.RealizedDurationMin > 0 {
		return *e.RealizedDurationMin
	}
	return totals.DurationMin
}

// Round2 rounds a monetary amount to 2 decimal places. Rounding happens
// only at display computation, never inside accumulation, so rounding
// error does not compound across lines.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
