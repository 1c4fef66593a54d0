package domain

import (
	"time"
)

// EngagementWire is the ingestion shape for engagement records coming from
// the remote backend. The backend has historically emitted both
// underscore-separated and camel-case spellings for the same logical
// field, so both are accepted and coalesced into one internal shape.
// Camel-case wins when both spellings are present.
type EngagementWire struct {
	ID string `json:"id"`

	ClientID      string  `json:"clientId"`
	ClientIDSnake string  `json:"client_id"`
	CompanyID     *string `json:"companyId"`
	CompanySnake  *string `json:"company_id"`
	ServiceID     string  `json:"serviceId"`
	ServiceSnake  string  `json:"service_id"`

	OptionIDs        []string    `json:"optionIds"`
	OptionIDsSnake   []string    `json:"option_ids"`
	Overrides        OverrideMap `json:"optionOverrides"`
	OverridesSnake   OverrideMap `json:"option_overrides"`
	AdditionalCharge *float64    `json:"additionalCharge"`
	AdditionalSnake  *float64    `json:"additional_charge"`

	Kind             string  `json:"kind"`
	Status           string  `json:"status"`
	QuoteStatus      *string `json:"quoteStatus"`
	QuoteStatusSnake *string `json:"quote_status"`

	ScheduledAt      string `json:"scheduledAt"`
	ScheduledAtSnake string `json:"scheduled_at"`

	InvoiceNumber      *string `json:"invoiceNumber"`
	InvoiceNumberSnake *string `json:"invoice_number"`
	QuoteNumber        *string `json:"quoteNumber"`
	QuoteNumberSnake   *string `json:"quote_number"`

	// Tri-state on the wire: absent or null means inherit.
	InvoiceVatEnabled      *bool `json:"invoiceVatEnabled"`
	InvoiceVatEnabledSnake *bool `json:"invoice_vat_enabled"`

	ContactIDs       []string        `json:"contactIds"`
	ContactIDsSnake  []string        `json:"contact_ids"`
	SendHistory      SendHistoryList `json:"sendHistory"`
	SendHistorySnake SendHistoryList `json:"send_history"`

	SupportType        string  `json:"supportType"`
	SupportTypeSnake   string  `json:"support_type"`
	SupportDetail      string  `json:"supportDetail"`
	SupportDetailSnake string  `json:"support_detail"`
	RealizedMin        *int    `json:"realizedDurationMinutes"`
	RealizedMinSnake   *int    `json:"realized_duration_minutes"`
	CompletionComment  *string `json:"completionComment"`
	CompletionSnake    *string `json:"completion_comment"`
}

func coalesceStr(camel, snake string) string {
	if camel != "" {
		return camel
	}
	return snake
}

func coalesceStrPtr(camel, snake *string) *string {
	if camel != nil {
		return camel
	}
	return snake
}

// Normalize converts the wire record into the internal Engagement shape.
// Unknown kind/status values are preserved only when valid; otherwise the
// record falls back to a service engagement in planifié status, matching
// the tolerant ingestion the screens rely on.
func (w *EngagementWire) Normalize() Engagement {
	e := Engagement{
		BaseModel: BaseModel{ID: w.ID},
		ClientID:  coalesceStr(w.ClientID, w.ClientIDSnake),
		CompanyID: coalesceStrPtr(w.CompanyID, w.CompanySnake),
		ServiceID: coalesceStr(w.ServiceID, w.ServiceSnake),
	}

	e.OptionIDs = StringList(w.OptionIDs)
	if e.OptionIDs == nil {
		e.OptionIDs = StringList(w.OptionIDsSnake)
	}
	if e.OptionIDs == nil {
		e.OptionIDs = StringList{}
	}

	e.OptionOverrides = w.Overrides
	if e.OptionOverrides == nil {
		e.OptionOverrides = w.OverridesSnake
	}
	if e.OptionOverrides == nil {
		e.OptionOverrides = OverrideMap{}
	}

	switch {
	case w.AdditionalCharge != nil:
		e.AdditionalCharge = *w.AdditionalCharge
	case w.AdditionalSnake != nil:
		e.AdditionalCharge = *w.AdditionalSnake
	}

	e.Kind = KindService
	if k := EngagementKind(w.Kind); k.IsValid() {
		e.Kind = k
	}
	e.Status = StatusPlanifie
	if s := EngagementStatus(w.Status); s.IsValid() {
		e.Status = s
	}
	if qs := coalesceStrPtr(w.QuoteStatus, w.QuoteStatusSnake); qs != nil {
		if q := QuoteStatus(*qs); q.IsValid() {
			e.QuoteStatus = &q
		}
	}

	if raw := coalesceStr(w.ScheduledAt, w.ScheduledAtSnake); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			e.ScheduledAt = t
		}
	}

	e.InvoiceNumber = coalesceStrPtr(w.InvoiceNumber, w.InvoiceNumberSnake)
	e.QuoteNumber = coalesceStrPtr(w.QuoteNumber, w.QuoteNumberSnake)

	vat := w.InvoiceVatEnabled
	if vat == nil {
		vat = w.InvoiceVatEnabledSnake
	}
	e.InvoiceVat = VatOverrideFromBool(vat)

	e.ContactIDs = StringList(w.ContactIDs)
	if e.ContactIDs == nil {
		e.ContactIDs = StringList(w.ContactIDsSnake)
	}
	if e.ContactIDs == nil {
		e.ContactIDs = StringList{}
	}

	e.SendHistory = w.SendHistory
	if e.SendHistory == nil {
		e.SendHistory = w.SendHistorySnake
	}
	if e.SendHistory == nil {
		e.SendHistory = SendHistoryList{}
	}

	e.SupportType = coalesceStr(w.SupportType, w.SupportTypeSnake)
	e.SupportDetail = coalesceStr(w.SupportDetail, w.SupportDetailSnake)
	if w.RealizedMin != nil {
		e.RealizedDurationMin = w.RealizedMin
	} else {
		e.RealizedDurationMin = w.RealizedMinSnake
	}
	e.CompletionComment = coalesceStrPtr(w.CompletionComment, w.CompletionSnake)

	return e
}

// ToWire converts an internal engagement to the outbound wire shape. The
// backend stores underscore field names; document numbers are persisted
// verbatim as part of the record.
func (e *Engagement) ToWire() map[string]interface{} {
	payload := map[string]interface{}{
		"id":                e.ID,
		"client_id":         e.ClientID,
		"service_id":        e.ServiceID,
		"option_ids":        []string(e.OptionIDs),
		"option_overrides":  e.OptionOverrides,
		"additional_charge": e.AdditionalCharge,
		"kind":              string(e.Kind),
		"status":            string(e.Status),
		"scheduled_at":      e.ScheduledAt.UTC().Format(time.RFC3339),
		"contact_ids":       []string(e.ContactIDs),
		"send_history":      e.SendHistory,
	}
	if e.CompanyID != nil {
		payload["company_id"] = *e.CompanyID
	}
	if e.QuoteStatus != nil {
		payload["quote_status"] = string(*e.QuoteStatus)
	}
	if e.InvoiceNumber != nil {
		payload["invoice_number"] = *e.InvoiceNumber
	}
	if e.QuoteNumber != nil {
		payload["quote_number"] = *e.QuoteNumber
	}
	if b := e.InvoiceVat.Bool(); b != nil {
		payload["invoice_vat_enabled"] = *b
	}
	if e.SupportType != "" {
		payload["support_type"] = e.SupportType
	}
	if e.SupportDetail != "" {
		payload["support_detail"] = e.SupportDetail
	}
	if e.RealizedDurationMin != nil {
		payload["realized_duration_minutes"] = *e.RealizedDurationMin
	}
	if e.CompletionComment != nil {
		payload["completion_comment"] = *e.CompletionComment
	}
	return payload
}
