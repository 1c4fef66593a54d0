package domain

import "time"

// TotalsDTO is the display-ready aggregation of an engagement's pricing
// inputs. Price and VAT amounts are rounded to 2 decimals; Surcharge is
// kept separate so callers can render it as its own line.
type TotalsDTO struct {
	Price          float64  `json:"price"`
	DurationMin    int      `json:"durationMinutes"`
	Surcharge      float64  `json:"surcharge"`
	Subtotal       float64  `json:"subtotal"`
	VatEnabled     bool     `json:"vatEnabled"`
	VatRate        float64  `json:"vatRate"`
	VatAmount      float64  `json:"vatAmount"`
	TotalWithVat   float64  `json:"totalWithVat"`
	StaleOptionIDs []string `json:"staleOptionIds,omitempty"`
}

// EngagementDTO is the API representation of an engagement.
type EngagementDTO struct {
	ID                  string           `json:"id"`
	ClientID            string           `json:"clientId"`
	ClientName          string           `json:"clientName,omitempty"`
	CompanyID           *string          `json:"companyId,omitempty"`
	ServiceID           string           `json:"serviceId"`
	ServiceName         string           `json:"serviceName,omitempty"`
	OptionIDs           []string         `json:"optionIds"`
	OptionOverrides     OverrideMap      `json:"optionOverrides,omitempty"`
	AdditionalCharge    float64          `json:"additionalCharge"`
	Kind                EngagementKind   `json:"kind"`
	Status              EngagementStatus `json:"status"`
	QuoteStatus         *QuoteStatus     `json:"quoteStatus,omitempty"`
	ScheduledAt         string           `json:"scheduledAt"`
	InvoiceNumber       *string          `json:"invoiceNumber,omitempty"`
	QuoteNumber         *string          `json:"quoteNumber,omitempty"`
	DocumentNumber      string           `json:"documentNumber"`
	InvoiceVatEnabled   VatOverride      `json:"invoiceVatEnabled"`
	ContactIDs          []string         `json:"contactIds"`
	SendHistory         []SendRecord     `json:"sendHistory"`
	SupportType         string           `json:"supportType,omitempty"`
	SupportDetail       string           `json:"supportDetail,omitempty"`
	RealizedDurationMin *int             `json:"realizedDurationMinutes,omitempty"`
	CompletionComment   *string          `json:"completionComment,omitempty"`
	Totals              *TotalsDTO       `json:"totals,omitempty"`
	CreatedAt           string           `json:"createdAt"`
	UpdatedAt           string           `json:"updatedAt"`
}

// DocumentLine is one priced line of a generated quote or invoice.
type DocumentLine struct {
	Label       string  `json:"label"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	DurationMin int     `json:"durationMinutes"`
	LineTotal   float64 `json:"lineTotal"`
}

// DocumentDTO is the display-ready payload for a quote or invoice. Page
// layout and PDF rendering belong to the presentation layer; the engine
// only hands back plain data.
type DocumentDTO struct {
	DocumentNumber string         `json:"documentNumber"`
	Kind           EngagementKind `json:"kind"`
	IssueDate      string         `json:"issueDate"`
	ServiceDate    string         `json:"serviceDate"`
	CompanyName    string         `json:"companyName"`
	CompanySiret   string         `json:"companySiret,omitempty"`
	ClientName     string         `json:"clientName"`
	Lines          []DocumentLine `json:"lines"`
	Surcharge      float64        `json:"surcharge"`
	Subtotal       float64        `json:"subtotal"`
	VatEnabled     bool           `json:"vatEnabled"`
	VatRate        float64        `json:"vatRate"`
	VatAmount      float64        `json:"vatAmount"`
	TotalWithVat   float64        `json:"totalWithVat"`
}

// CreateEngagementRequest creates a new engagement.
type CreateEngagementRequest struct {
	ClientID         string         `json:"clientId" validate:"required"`
	CompanyID        *string        `json:"companyId,omitempty"`
	ServiceID        string         `json:"serviceId" validate:"required"`
	OptionIDs        []string       `json:"optionIds"`
	OptionOverrides  OverrideMap    `json:"optionOverrides,omitempty"`
	AdditionalCharge float64        `json:"additionalCharge"`
	Kind             EngagementKind `json:"kind" validate:"omitempty,oneof=service devis facture"`
	ScheduledAt      time.Time      `json:"scheduledAt" validate:"required"`
	ContactIDs       []string       `json:"contactIds,omitempty"`
	SupportType      string         `json:"supportType,omitempty" validate:"max=100"`
	SupportDetail    string         `json:"supportDetail,omitempty" validate:"max=500"`
}

// UpdateEngagementRequest patches an engagement. Nil fields are left
// untouched; InvoiceVat uses the tri-state enum so "reset to inherit" is
// expressed explicitly via the dedicated VAT endpoint, not here.
type UpdateEngagementRequest struct {
	CompanyID        *string      `json:"companyId,omitempty"`
	OptionIDs        *[]string    `json:"optionIds,omitempty"`
	OptionOverrides  *OverrideMap `json:"optionOverrides,omitempty"`
	AdditionalCharge *float64     `json:"additionalCharge,omitempty"`
	ScheduledAt      *time.Time   `json:"scheduledAt,omitempty"`
	ContactIDs       *[]string    `json:"contactIds,omitempty"`
	SupportType      *string      `json:"supportType,omitempty" validate:"omitempty,max=100"`
	SupportDetail    *string      `json:"supportDetail,omitempty" validate:"omitempty,max=500"`
}

// SetVatOverrideRequest forces or resets the engagement VAT treatment.
// Enabled=nil resets to inherit.
type SetVatOverrideRequest struct {
	Enabled *bool `json:"enabled"`
}

// SendQuoteRequest emails a quote to the given contacts. This is the only
// operation that appends to send history.
type SendQuoteRequest struct {
	ContactIDs []string `json:"contactIds" validate:"required,min=1"`
	Subject    string   `json:"subject,omitempty" validate:"max=200"`
}

// SettleQuoteRequest records the commercial outcome of a sent quote.
type SettleQuoteRequest struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty" validate:"max=500"`
}

// GenerateInvoiceRequest issues an invoice from a realized service.
type GenerateInvoiceRequest struct {
	CompanyID *string `json:"companyId,omitempty"`
}

// GenerateInvoiceResponse carries the updated source engagement, the newly
// created facture engagement and the display-ready invoice payload.
type GenerateInvoiceResponse struct {
	Service  *EngagementDTO `json:"service"`
	Invoice  *EngagementDTO `json:"invoice"`
	Document *DocumentDTO   `json:"document"`
}

// CompleteEngagementRequest marks a planned/confirmed service as realized.
type CompleteEngagementRequest struct {
	RealizedDurationMin *int    `json:"realizedDurationMinutes,omitempty" validate:"omitempty,gte=0"`
	CompletionComment   *string `json:"completionComment,omitempty" validate:"omitempty,max=2000"`
}

// CancelEngagementRequest cancels a non-terminal engagement.
type CancelEngagementRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// CreateClientRequest creates a client.
type CreateClientRequest struct {
	Name       string                 `json:"name" validate:"required,max=200"`
	Email      string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string                 `json:"phone,omitempty" validate:"max=50"`
	Address    string                 `json:"address,omitempty" validate:"max=500"`
	City       string                 `json:"city,omitempty" validate:"max=100"`
	PostalCode string                 `json:"postalCode,omitempty" validate:"max=20"`
	Notes      string                 `json:"notes,omitempty"`
	Contacts   []CreateContactRequest `json:"contacts,omitempty" validate:"dive"`
}

// UpdateClientRequest patches a client.
type UpdateClientRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Notes      *string `json:"notes,omitempty"`
}

// CreateContactRequest adds a contact to a client.
type CreateContactRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty" validate:"max=50"`
	Active         bool   `json:"active"`
	BillingDefault bool   `json:"billingDefault"`
}

// CreateCompanyRequest creates a company.
type CreateCompanyRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Siret      string  `json:"siret,omitempty" validate:"max=20"`
	VatNumber  string  `json:"vatNumber,omitempty" validate:"max=40"`
	Address    string  `json:"address,omitempty" validate:"max=500"`
	Email      string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string  `json:"phone,omitempty" validate:"max=50"`
	VatEnabled *bool   `json:"vatEnabled,omitempty"`
	VatRate    float64 `json:"vatRate" validate:"gte=0,lte=100"`
}

// UpdateCompanyRequest patches a company.
type UpdateCompanyRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Siret      *string  `json:"siret,omitempty" validate:"omitempty,max=20"`
	VatNumber  *string  `json:"vatNumber,omitempty" validate:"omitempty,max=40"`
	Address    *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	Email      *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	VatEnabled *bool    `json:"vatEnabled,omitempty"`
	VatRate    *float64 `json:"vatRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive   *bool    `json:"isActive,omitempty"`
}

// CreateServiceRequest creates a catalog service with its options.
type CreateServiceRequest struct {
	Name            string                        `json:"name" validate:"required,max=200"`
	Description     string                        `json:"description,omitempty"`
	BasePrice       *float64                      `json:"basePrice,omitempty" validate:"omitempty,gte=0"`
	BaseDurationMin *int                          `json:"baseDurationMin,omitempty" validate:"omitempty,gte=0"`
	Options         []CreateServiceOptionRequest `json:"options,omitempty" validate:"dive"`
}

// CreateServiceOptionRequest adds an option to a catalog service.
type CreateServiceOptionRequest struct {
	Label              string  `json:"label" validate:"required,max=200"`
	UnitPrice          float64 `json:"unitPrice" validate:"gte=0"`
	DefaultDurationMin int     `json:"defaultDurationMin" validate:"gte=0"`
	DisplayOrder       int     `json:"displayOrder"`
}

// UpdateServiceRequest patches a catalog service.
type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description     *string  `json:"description,omitempty"`
	BasePrice       *float64 `json:"basePrice,omitempty" validate:"omitempty,gte=0"`
	BaseDurationMin *int     `json:"baseDurationMin,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// PaginatedResponse wraps a list payload with paging metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// SyncStatusDTO reports the reconciliation state per resource category.
type SyncStatusDTO struct {
	Resource   string `json:"resource"`
	State      string `json:"state"`
	LastSyncAt string `json:"lastSyncAt,omitempty"`
	LastError  string `json:"lastError,omitempty"`
}
