// Package mapper converts persisted entities into API DTOs. Conversions
// are pure; pricing totals are computed by the caller and attached here.
package mapper

import (
	"time"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/numbering"
	"github.com/washandgo/engagement-api/internal/pricing"
)

// ToEngagementDTO converts an engagement to its API shape. Totals may be
// nil when the caller does not need pricing attached.
func ToEngagementDTO(e *domain.Engagement, totals *domain.TotalsDTO) domain.EngagementDTO {
	dto := domain.EngagementDTO{
		ID:                  e.ID,
		ClientID:            e.ClientID,
		CompanyID:           e.CompanyID,
		ServiceID:           e.ServiceID,
		OptionIDs:           e.OptionIDs,
		OptionOverrides:     e.OptionOverrides,
		AdditionalCharge:    e.AdditionalCharge,
		Kind:                e.Kind,
		Status:              e.Status,
		QuoteStatus:         e.QuoteStatus,
		ScheduledAt:         e.ScheduledAt.UTC().Format(time.RFC3339),
		InvoiceNumber:       e.InvoiceNumber,
		QuoteNumber:         e.QuoteNumber,
		DocumentNumber:      numbering.DocumentLabel(e),
		InvoiceVatEnabled:   e.InvoiceVat,
		ContactIDs:          e.ContactIDs,
		SendHistory:         e.SendHistory,
		SupportType:         e.SupportType,
		SupportDetail:       e.SupportDetail,
		RealizedDurationMin: e.RealizedDurationMin,
		CompletionComment:   e.CompletionComment,
		Totals:              totals,
		CreatedAt:           e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if dto.OptionIDs == nil {
		dto.OptionIDs = []string{}
	}
	if dto.ContactIDs == nil {
		dto.ContactIDs = []string{}
	}
	if dto.SendHistory == nil {
		dto.SendHistory = []domain.SendRecord{}
	}
	return dto
}

// ToTotalsDTO combines raw totals with the resolved VAT treatment into
// the display-ready shape. Monetary values are rounded here, at the edge.
func ToTotalsDTO(totals pricing.Totals, vatEnabled bool, vatRate float64) domain.TotalsDTO {
	price := pricing.Round2(totals.Price)
	surcharge := pricing.Round2(totals.Surcharge)
	subtotal := pricing.Round2(price + surcharge)
	vatAmount, totalWithVat := pricing.ComputeVat(subtotal, vatRate, vatEnabled)

	return domain.TotalsDTO{
		Price:          price,
		DurationMin:    totals.DurationMin,
		Surcharge:      surcharge,
		Subtotal:       subtotal,
		VatEnabled:     vatEnabled,
		VatRate:        vatRate,
		VatAmount:      vatAmount,
		TotalWithVat:   pricing.Round2(totalWithVat),
		StaleOptionIDs: totals.StaleOptionIDs,
	}
}

// ToDocumentLines builds the priced lines of a quote or invoice from the
// engagement's resolved options. Stale option ids produce no line.
func ToDocumentLines(e *domain.Engagement, service *domain.Service) []domain.DocumentLine {
	lines := []domain.DocumentLine{}
	if service == nil {
		return lines
	}

	options := make(map[string]*domain.ServiceOption, len(service.Options))
	for i := range service.Options {
		options[service.Options[i].ID] = &service.Options[i]
	}

	for _, id := range e.OptionIDs {
		option, ok := options[id]
		if !ok {
			continue
		}
		var override *domain.OptionOverride
		if ov, ok := e.OptionOverrides[id]; ok {
			override = &ov
		}
		eff := pricing.ResolveOverride(option, override)
		lines = append(lines, domain.DocumentLine{
			Label:       option.Label,
			Quantity:    eff.Quantity,
			UnitPrice:   pricing.Round2(eff.UnitPrice),
			DurationMin: eff.DurationMin * eff.Quantity,
			LineTotal:   pricing.Round2(eff.UnitPrice * float64(eff.Quantity)),
		})
	}

	// Flat-priced service with no resolvable option: one line from the
	// service itself.
	if len(lines) == 0 && service.BasePrice != nil {
		duration := 0
		if service.BaseDurationMin != nil {
			duration = *service.BaseDurationMin
		}
		lines = append(lines, domain.DocumentLine{
			Label:       service.Name,
			Quantity:    1,
			UnitPrice:   pricing.Round2(*service.BasePrice),
			DurationMin: duration,
			LineTotal:   pricing.Round2(*service.BasePrice),
		})
	}

	return lines
}

// ToDocumentDTO assembles the display-ready document payload.
func ToDocumentDTO(e *domain.Engagement, service *domain.Service, client *domain.Client, company *domain.Company, totals domain.TotalsDTO) domain.DocumentDTO {
	doc := domain.DocumentDTO{
		DocumentNumber: numbering.DocumentLabel(e),
		Kind:           e.Kind,
		IssueDate:      time.Now().UTC().Format("2006-01-02"),
		ServiceDate:    e.ScheduledAt.UTC().Format("2006-01-02"),
		Lines:          ToDocumentLines(e, service),
		Surcharge:      totals.Surcharge,
		Subtotal:       totals.Subtotal,
		VatEnabled:     totals.VatEnabled,
		VatRate:        totals.VatRate,
		VatAmount:      totals.VatAmount,
		TotalWithVat:   totals.TotalWithVat,
	}
	if company != nil {
		doc.CompanyName = company.Name
		doc.CompanySiret = company.Siret
	}
	if client != nil {
		doc.ClientName = client.Name
	}
	return doc
}
