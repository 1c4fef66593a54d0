package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/repository"
)

var testVat = config.VatConfig{DefaultEnabled: true, DefaultRate: 20}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Company{},
		&domain.Client{},
		&domain.ClientContact{},
		&domain.Service{},
		&domain.ServiceOption{},
		&domain.Engagement{},
	))
	return db
}

type fixture struct {
	db          *gorm.DB
	engagements *EngagementService
	clients     *ClientService
	companies   *CompanyService
	catalog     *CatalogService

	company *domain.Company
	client  *domain.Client
	contact *domain.ClientContact
	service *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	log := zap.NewNop()

	engagementRepo := repository.NewEngagementRepository(db)
	clientRepo := repository.NewClientRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	f := &fixture{
		db:          db,
		engagements: NewEngagementService(db, engagementRepo, clientRepo, companyRepo, catalogRepo, testVat, log),
		clients:     NewClientService(clientRepo, log),
		companies:   NewCompanyService(companyRepo, log),
		catalog:     NewCatalogService(catalogRepo, log),
	}

	ctx := context.Background()

	company, err := f.companies.Create(ctx, &domain.CreateCompanyRequest{
		Name:    "Wash&Go SAS",
		Siret:   "12345678900011",
		VatRate: 20,
	})
	require.NoError(t, err)
	f.company = company

	client, err := f.clients.Create(ctx, &domain.CreateClientRequest{
		Name:  "Garage Dupont",
		Email: "contact@garage-dupont.fr",
		Contacts: []domain.CreateContactRequest{
			{Name: "Marie Dupont", Email: "marie@garage-dupont.fr", Active: true, BillingDefault: true},
		},
	})
	require.NoError(t, err)
	f.client = client
	require.Len(t, client.Contacts, 1)
	f.contact = &client.Contacts[0]

	svc, err := f.catalog.CreateService(ctx, &domain.CreateServiceRequest{
		Name: "Lavage complet",
		Options: []domain.CreateServiceOptionRequest{
			{Label: "Extérieur", UnitPrice: 25.00, DefaultDurationMin: 30},
			{Label: "Intérieur", UnitPrice: 15.50, DefaultDurationMin: 20, DisplayOrder: 1},
		},
	})
	require.NoError(t, err)
	f.service = svc

	return f
}

func (f *fixture) newEngagement(t *testing.T, kind domain.EngagementKind) *domain.EngagementDTO {
	t.Helper()
	dto, err := f.engagements.Create(context.Background(), &domain.CreateEngagementRequest{
		ClientID:    f.client.ID,
		ServiceID:   f.service.ID,
		OptionIDs:   []string{f.service.Options[0].ID},
		Kind:        kind,
		ScheduledAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return dto
}

func TestCreateEngagementDefaults(t *testing.T) {
	f := newFixture(t)

	t.Run("service starts planned", func(t *testing.T) {
		dto := f.newEngagement(t, domain.KindService)
		assert.Equal(t, domain.StatusPlanifie, dto.Status)
		assert.Nil(t, dto.QuoteStatus)
		assert.Equal(t, domain.VatInherit, dto.InvoiceVatEnabled)
		require.NotNil(t, dto.Totals)
		assert.Equal(t, 25.00, dto.Totals.Price)
		assert.Equal(t, 30, dto.Totals.DurationMin)
	})

	t.Run("quote starts as draft on both axes", func(t *testing.T) {
		dto := f.newEngagement(t, domain.KindDevis)
		assert.Equal(t, domain.StatusBrouillon, dto.Status)
		require.NotNil(t, dto.QuoteStatus)
		assert.Equal(t, domain.QuoteBrouillon, *dto.QuoteStatus)
	})
}

func TestCreateEngagementUnresolvableReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engagements.Create(ctx, &domain.CreateEngagementRequest{
		ClientID:    "no-such-client",
		ServiceID:   f.service.ID,
		ScheduledAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = f.engagements.Create(ctx, &domain.CreateEngagementRequest{
		ClientID:    f.client.ID,
		ServiceID:   "no-such-service",
		ScheduledAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestVatOverrideTriState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.newEngagement(t, domain.KindService)

	// Inherit follows the company default (enabled, 20%).
	totals, err := f.engagements.GetTotals(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, totals.VatEnabled)
	assert.Equal(t, 25.00, totals.Subtotal)
	assert.Equal(t, 5.00, totals.VatAmount)
	assert.Equal(t, 30.00, totals.TotalWithVat)

	// Forcing false wins over the company default.
	disabled := false
	updated, err := f.engagements.SetVatOverride(ctx, dto.ID, &domain.SetVatOverrideRequest{Enabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, domain.VatDisabled, updated.InvoiceVatEnabled)
	require.NotNil(t, updated.Totals)
	assert.False(t, updated.Totals.VatEnabled)
	assert.Zero(t, updated.Totals.VatAmount)
	assert.Equal(t, 25.00, updated.Totals.TotalWithVat)

	// Resetting to inherit is distinct from forcing false.
	reset, err := f.engagements.SetVatOverride(ctx, dto.ID, &domain.SetVatOverrideRequest{Enabled: nil})
	require.NoError(t, err)
	assert.Equal(t, domain.VatInherit, reset.InvoiceVatEnabled)
	require.NotNil(t, reset.Totals)
	assert.True(t, reset.Totals.VatEnabled)
	assert.Equal(t, 5.00, reset.Totals.VatAmount)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.newEngagement(t, domain.KindService)

	surcharge := 10.0
	updated, err := f.engagements.Update(ctx, dto.ID, &domain.UpdateEngagementRequest{
		AdditionalCharge: &surcharge,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.AdditionalCharge)
	assert.Equal(t, dto.OptionIDs, updated.OptionIDs, "untouched fields keep their values")
	require.NotNil(t, updated.Totals)
	assert.Equal(t, 35.00, updated.Totals.Subtotal)
}

func TestServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.newEngagement(t, domain.KindService)

	confirmed, err := f.engagements.Confirm(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnvoye, confirmed.Status)

	_, err = f.engagements.Confirm(ctx, dto.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "confirm is only valid from planifié")

	minutes := 45
	comment := "client satisfait"
	completed, err := f.engagements.Complete(ctx, dto.ID, &domain.CompleteEngagementRequest{
		RealizedDurationMin: &minutes,
		CompletionComment:   &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRealise, completed.Status)
	require.NotNil(t, completed.RealizedDurationMin)
	assert.Equal(t, 45, *completed.RealizedDurationMin)

	_, err = f.engagements.Cancel(ctx, dto.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition, "réalisé is terminal")
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	planned := f.newEngagement(t, domain.KindService)
	cancelled, err := f.engagements.Cancel(ctx, planned.ID, &domain.CancelEngagementRequest{Reason: "client absent"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnnule, cancelled.Status)

	_, err = f.engagements.Cancel(ctx, planned.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSendQuoteAppendsHistoryOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.newEngagement(t, domain.KindDevis)

	sent, err := f.engagements.SendDocument(ctx, quote.ID, &domain.SendQuoteRequest{
		ContactIDs: []string{f.contact.ID},
		Subject:    "Votre devis",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusBrouillon, sent.Status, "sending moves only the commercial axis")
	require.NotNil(t, sent.QuoteStatus)
	assert.Equal(t, domain.QuoteEnvoye, *sent.QuoteStatus)
	require.NotNil(t, sent.QuoteNumber)
	assert.Regexp(t, `^\d{4}-\d{4}$`, *sent.QuoteNumber)
	require.Len(t, sent.SendHistory, 1)
	assert.Equal(t, []string{f.contact.ID}, sent.SendHistory[0].ContactIDs)
	assert.Equal(t, "Votre devis", sent.SendHistory[0].Subject)

	// A second send keeps the allocated number and appends one entry.
	again, err := f.engagements.SendDocument(ctx, quote.ID, &domain.SendQuoteRequest{
		ContactIDs: []string{f.contact.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, *sent.QuoteNumber, *again.QuoteNumber)
	assert.Len(t, again.SendHistory, 2)
}

func TestSendQuoteUnknownContactMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.newEngagement(t, domain.KindDevis)

	_, err := f.engagements.SendDocument(ctx, quote.ID, &domain.SendQuoteRequest{
		ContactIDs: []string{"no-such-contact"},
	})
	assert.ErrorIs(t, err, ErrContactNotFound)

	reloaded, err := f.engagements.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBrouillon, reloaded.Status)
	assert.Nil(t, reloaded.QuoteNumber)
	assert.Empty(t, reloaded.SendHistory)
}

func TestSettleQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.newEngagement(t, domain.KindDevis)

	_, err := f.engagements.SettleQuote(ctx, quote.ID, &domain.SettleQuoteRequest{Accepted: true})
	assert.ErrorIs(t, err, ErrInvalidTransition, "a draft quote cannot be settled")

	_, err = f.engagements.SendDocument(ctx, quote.ID, &domain.SendQuoteRequest{ContactIDs: []string{f.contact.ID}})
	require.NoError(t, err)

	settled, err := f.engagements.SettleQuote(ctx, quote.ID, &domain.SettleQuoteRequest{Accepted: true})
	require.NoError(t, err)
	require.NotNil(t, settled.QuoteStatus)
	assert.Equal(t, domain.QuoteAccepte, *settled.QuoteStatus)

	_, err = f.engagements.SettleQuote(ctx, quote.ID, &domain.SettleQuoteRequest{Accepted: false})
	assert.ErrorIs(t, err, ErrQuoteAlreadySettled)
}

func TestGenerateQuoteAllocatesNumberOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.newEngagement(t, domain.KindDevis)

	doc, err := f.engagements.GenerateQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-0001$`, doc.DocumentNumber)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "Extérieur", doc.Lines[0].Label)
	assert.Equal(t, 25.00, doc.Lines[0].LineTotal)

	// Regenerating returns the same number and changes no status.
	doc2, err := f.engagements.GenerateQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.DocumentNumber, doc2.DocumentNumber)

	reloaded, err := f.engagements.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBrouillon, reloaded.Status, "document generation never changes status")
}

func TestGenerateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.newEngagement(t, domain.KindService)

	resp, err := f.engagements.GenerateInvoice(ctx, service.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)

	// The source service is realized and stamped for traceability, but
	// stays a service record.
	assert.Equal(t, domain.KindService, resp.Service.Kind)
	assert.Equal(t, domain.StatusRealise, resp.Service.Status)
	require.NotNil(t, resp.Service.InvoiceNumber)

	// The invoice is an independent engagement sharing the number.
	assert.Equal(t, domain.KindFacture, resp.Invoice.Kind)
	assert.Equal(t, domain.StatusEnvoye, resp.Invoice.Status)
	assert.NotEqual(t, resp.Service.ID, resp.Invoice.ID)
	require.NotNil(t, resp.Invoice.InvoiceNumber)
	assert.Equal(t, *resp.Service.InvoiceNumber, *resp.Invoice.InvoiceNumber)
	assert.Regexp(t, `^\d{4}-0001$`, *resp.Invoice.InvoiceNumber)

	assert.Equal(t, *resp.Invoice.InvoiceNumber, resp.Document.DocumentNumber)
	assert.Equal(t, 30.00, resp.Document.TotalWithVat)

	// Later edits to the service do not alter the issued invoice.
	surcharge := 99.0
	_, err = f.engagements.Update(ctx, service.ID, &domain.UpdateEngagementRequest{AdditionalCharge: &surcharge})
	require.NoError(t, err)

	invoice, err := f.engagements.GetByID(ctx, resp.Invoice.ID)
	require.NoError(t, err)
	assert.Zero(t, invoice.AdditionalCharge)
	assert.Equal(t, 30.00, invoice.Totals.TotalWithVat)
}

func TestGenerateInvoiceSequenceIsMaxPlusOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.newEngagement(t, domain.KindService)
	second := f.newEngagement(t, domain.KindService)

	r1, err := f.engagements.GenerateInvoice(ctx, first.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)
	r2, err := f.engagements.GenerateInvoice(ctx, second.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("%d-0001", year), *r1.Invoice.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("%d-0002", year), *r2.Invoice.InvoiceNumber)
}

func TestGenerateInvoiceRejectsNonService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quote := f.newEngagement(t, domain.KindDevis)
	_, err := f.engagements.GenerateInvoice(ctx, quote.ID, &domain.GenerateInvoiceRequest{})
	assert.ErrorIs(t, err, ErrNotAService)

	cancelled := f.newEngagement(t, domain.KindService)
	_, err = f.engagements.Cancel(ctx, cancelled.ID, nil)
	require.NoError(t, err)
	_, err = f.engagements.GenerateInvoice(ctx, cancelled.ID, &domain.GenerateInvoiceRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGenerateInvoiceReusesStampedNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.newEngagement(t, domain.KindService)

	first, err := f.engagements.GenerateInvoice(ctx, service.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)
	require.NotNil(t, first.Invoice.InvoiceNumber)

	second, err := f.engagements.GenerateInvoice(ctx, service.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)
	require.NotNil(t, second.Invoice.InvoiceNumber)

	// The stamped number is reused verbatim and the issued facture is
	// returned instead of a duplicate.
	assert.Equal(t, *first.Invoice.InvoiceNumber, *second.Invoice.InvoiceNumber)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
	require.NotNil(t, second.Service.InvoiceNumber)
	assert.Equal(t, *first.Invoice.InvoiceNumber, *second.Service.InvoiceNumber)

	var count int64
	require.NoError(t, f.db.Model(&domain.Engagement{}).
		Where("kind = ?", domain.KindFacture).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerateInvoiceWithoutCompanyMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	service := f.newEngagement(t, domain.KindService)
	require.NoError(t, f.db.Model(&domain.Company{}).
		Where("id = ?", f.company.ID).
		Update("is_active", false).Error)

	_, err := f.engagements.GenerateInvoice(ctx, service.ID, &domain.GenerateInvoiceRequest{})
	require.ErrorIs(t, err, ErrCompanyNotFound)

	reloaded, err := f.engagements.GetByID(ctx, service.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanifie, reloaded.Status)
	assert.Nil(t, reloaded.InvoiceNumber)

	var count int64
	require.NoError(t, f.db.Model(&domain.Engagement{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no invoice record is created")
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.newEngagement(t, domain.KindService)

	resp, err := f.engagements.GenerateInvoice(ctx, service.ID, &domain.GenerateInvoiceRequest{})
	require.NoError(t, err)

	paid, err := f.engagements.MarkPaid(ctx, resp.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaye, paid.Status)

	_, err = f.engagements.MarkPaid(ctx, resp.Invoice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.engagements.MarkPaid(ctx, service.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "only invoices can be paid")
}

func TestStaleOptionSurfacedNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.engagements.Create(ctx, &domain.CreateEngagementRequest{
		ClientID:    f.client.ID,
		ServiceID:   f.service.ID,
		OptionIDs:   []string{f.service.Options[0].ID, "opt-deleted"},
		ScheduledAt: time.Now(),
	})
	require.NoError(t, err)

	require.NotNil(t, dto.Totals)
	assert.Equal(t, 25.00, dto.Totals.Price)
	assert.Equal(t, []string{"opt-deleted"}, dto.Totals.StaleOptionIDs)
	assert.Contains(t, dto.OptionIDs, "opt-deleted", "stale ids stay stored, never pruned")
}
