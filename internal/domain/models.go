package domain

import (
	"time"
)

// BaseModel holds the common columns shared by all persisted entities.
// Identifiers are strings rather than native UUIDs because engagement ids
// can originate on the remote backend, which does not guarantee UUID shape.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// EngagementKind is the document category of an engagement.
type EngagementKind string

const (
	KindService EngagementKind = "service"
	KindDevis   EngagementKind = "devis"
	KindFacture EngagementKind = "facture"
)

// IsValid checks if the EngagementKind is a valid enum value
func (k EngagementKind) IsValid() bool {
	switch k {
	case KindService, KindDevis, KindFacture:
		return true
	}
	return false
}

// EngagementStatus is the generic scheduling status of an engagement.
// The wire representation uses the literal French values.
type EngagementStatus string

const (
	StatusBrouillon EngagementStatus = "brouillon"
	StatusPlanifie  EngagementStatus = "planifié"
	StatusEnvoye    EngagementStatus = "envoyé"
	StatusRealise   EngagementStatus = "réalisé"
	StatusAnnule    EngagementStatus = "annulé"
	StatusPaye      EngagementStatus = "payé"
)

// IsValid checks if the EngagementStatus is a valid enum value
func (s EngagementStatus) IsValid() bool {
	switch s {
	case StatusBrouillon, StatusPlanifie, StatusEnvoye, StatusRealise, StatusAnnule, StatusPaye:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the engagement's own life.
// Issuing an invoice from a réalisé service never reopens the service record.
func (s EngagementStatus) IsTerminal() bool {
	return s == StatusRealise || s == StatusAnnule || s == StatusPaye
}

// QuoteStatus tracks the commercial outcome of a devis, independently of
// the generic engagement status.
type QuoteStatus string

const (
	QuoteBrouillon QuoteStatus = "brouillon"
	QuoteEnvoye    QuoteStatus = "envoyé"
	QuoteAccepte   QuoteStatus = "accepté"
	QuoteRefuse    QuoteStatus = "refusé"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (q QuoteStatus) IsValid() bool {
	switch q {
	case QuoteBrouillon, QuoteEnvoye, QuoteAccepte, QuoteRefuse:
		return true
	}
	return false
}

// IsSettled reports whether the quote has a final commercial outcome.
func (q QuoteStatus) IsSettled() bool {
	return q == QuoteAccepte || q == QuoteRefuse
}

// Company represents an issuing company (the business operating the CRM).
type Company struct {
	BaseModel
	Name       string  `gorm:"type:varchar(200);not null;index" json:"name"`
	Siret      string  `gorm:"type:varchar(20)" json:"siret,omitempty"`
	VatNumber  string  `gorm:"type:varchar(40);column:vat_number" json:"vatNumber,omitempty"`
	Address    string  `gorm:"type:varchar(500)" json:"address,omitempty"`
	Email      string  `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone      string  `gorm:"type:varchar(50)" json:"phone,omitempty"`
	VatEnabled bool    `gorm:"not null;default:true;column:vat_enabled" json:"vatEnabled"`
	VatRate    float64 `gorm:"type:decimal(5,2);not null;default:20;column:vat_rate" json:"vatRate"`
	IsActive   bool    `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// Client represents a customer of the business.
type Client struct {
	BaseModel
	Name       string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Email      string          `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone      string          `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address    string          `gorm:"type:varchar(500)" json:"address,omitempty"`
	City       string          `gorm:"type:varchar(100)" json:"city,omitempty"`
	PostalCode string          `gorm:"type:varchar(20);column:postal_code" json:"postalCode,omitempty"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	Contacts   []ClientContact `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
}

// ClientContact is an individual reachable person attached to a client.
type ClientContact struct {
	BaseModel
	ClientID       string `gorm:"type:varchar(64);not null;index;column:client_id" json:"clientId"`
	Name           string `gorm:"type:varchar(200);not null" json:"name"`
	Email          string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone          string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Active         bool   `gorm:"not null;default:true" json:"active"`
	BillingDefault bool   `gorm:"not null;default:false;column:billing_default" json:"billingDefault"`
}

// Service is a catalog item. Catalog data is read-only for the pricing
// engine: it is never mutated during an engagement's life.
type Service struct {
	BaseModel
	Name            string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	BasePrice       *float64        `gorm:"type:decimal(15,2);column:base_price" json:"basePrice,omitempty"`
	BaseDurationMin *int            `gorm:"column:base_duration_min" json:"baseDurationMin,omitempty"`
	IsActive        bool            `gorm:"not null;default:true;column:is_active" json:"isActive"`
	Options         []ServiceOption `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// ServiceOption is a selectable line of a catalog service.
type ServiceOption struct {
	BaseModel
	ServiceID          string  `gorm:"type:varchar(64);not null;index;column:service_id" json:"serviceId"`
	Label              string  `gorm:"type:varchar(200);not null" json:"label"`
	UnitPrice          float64 `gorm:"type:decimal(15,2);not null;column:unit_price" json:"unitPrice"`
	DefaultDurationMin int     `gorm:"not null;default:0;column:default_duration_min" json:"defaultDurationMin"`
	DisplayOrder       int     `gorm:"not null;default:0;column:display_order" json:"displayOrder"`
}

// OptionOverride is a per-engagement patch to a selected option. Absent
// fields fall back to the catalog defaults; values are clamped on use.
type OptionOverride struct {
	Quantity    *int     `json:"quantity,omitempty"`
	DurationMin *int     `json:"durationMin,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
}

// SendRecord is one entry of the engagement send history. Send history is
// only appended by the quote/invoice emailing path.
type SendRecord struct {
	ID         string    `json:"id"`
	ContactIDs []string  `json:"contactIds"`
	Subject    string    `json:"subject,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// Engagement is the central entity: one booked, quoted or invoiced unit of
// work linking a client, a company, a catalog service and pricing inputs.
type Engagement struct {
	BaseModel
	ClientID            string           `gorm:"type:varchar(64);not null;index;column:client_id" json:"clientId"`
	CompanyID           *string          `gorm:"type:varchar(64);index;column:company_id" json:"companyId,omitempty"`
	ServiceID           string           `gorm:"type:varchar(64);not null;index;column:service_id" json:"serviceId"`
	OptionIDs           StringList       `gorm:"type:text;column:option_ids" json:"optionIds"`
	OptionOverrides     OverrideMap      `gorm:"type:text;column:option_overrides" json:"optionOverrides,omitempty"`
	AdditionalCharge    float64          `gorm:"type:decimal(15,2);not null;default:0;column:additional_charge" json:"additionalCharge"`
	Kind                EngagementKind   `gorm:"type:varchar(20);not null;default:'service';index" json:"kind"`
	Status              EngagementStatus `gorm:"type:varchar(20);not null;default:'planifié';index" json:"status"`
	QuoteStatus         *QuoteStatus     `gorm:"type:varchar(20);column:quote_status" json:"quoteStatus,omitempty"`
	ScheduledAt         time.Time        `gorm:"not null;index;column:scheduled_at" json:"scheduledAt"`
	InvoiceNumber       *string          `gorm:"type:varchar(30);column:invoice_number" json:"invoiceNumber,omitempty"`
	QuoteNumber         *string          `gorm:"type:varchar(30);column:quote_number" json:"quoteNumber,omitempty"`
	InvoiceVat          VatOverride      `gorm:"type:boolean;column:invoice_vat_enabled" json:"invoiceVatEnabled"`
	ContactIDs          StringList       `gorm:"type:text;column:contact_ids" json:"contactIds"`
	SendHistory         SendHistoryList  `gorm:"type:text;column:send_history" json:"sendHistory"`
	SupportType         string           `gorm:"type:varchar(100);column:support_type" json:"supportType,omitempty"`
	SupportDetail       string           `gorm:"type:varchar(500);column:support_detail" json:"supportDetail,omitempty"`
	RealizedDurationMin *int             `gorm:"column:realized_duration_min" json:"realizedDurationMinutes,omitempty"`
	CompletionComment   *string          `gorm:"type:text;column:completion_comment" json:"completionComment,omitempty"`
}

// HasSelectedOption reports whether the option id is in the engagement's
// selected set.
func (e *Engagement) HasSelectedOption(optionID string) bool {
	for _, id := range e.OptionIDs {
		if id == optionID {
			return true
		}
	}
	return false
}

// DocumentNumber returns the number attached to the engagement for its
// kind, or nil when none has been allocated yet.
func (e *Engagement) DocumentNumber() *string {
	switch e.Kind {
	case KindFacture:
		return e.InvoiceNumber
	case KindDevis:
		return e.QuoteNumber
	}
	return nil
}
