package service

// Lifecycle transitions for engagements: confirmation, completion,
// cancellation, quote sending and settlement, and invoice generation.
// Every transition validates its preconditions before mutating anything;
// transitions that allocate a document number or create a record run in
// one transaction so either the whole step applies or none of it.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/numbering"
	"github.com/washandgo/engagement-api/internal/pricing"
)

// Confirm moves a planned service to envoyé (confirmed with the client).
func (s *EngagementService) Confirm(ctx context.Context, id string) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindService {
		return nil, ErrNotAService
	}
	if engagement.Status != domain.StatusPlanifie {
		return nil, ErrInvalidTransition
	}

	engagement.Status = domain.StatusEnvoye
	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to confirm engagement: %w", err)
	}

	s.logger.Info("engagement confirmed", zap.String("engagement_id", id))
	return s.toDTO(ctx, engagement)
}

// Complete marks a service as réalisé and records the realized duration
// and completion comment when provided. Réalisé is terminal for the
// service record itself.
func (s *EngagementService) Complete(ctx context.Context, id string, req *domain.CompleteEngagementRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindService {
		return nil, ErrNotAService
	}
	if engagement.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	engagement.Status = domain.StatusRealise
	if req != nil {
		if req.RealizedDurationMin != nil {
			engagement.RealizedDurationMin = req.RealizedDurationMin
		}
		if req.CompletionComment != nil {
			engagement.CompletionComment = req.CompletionComment
		}
	}

	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to complete engagement: %w", err)
	}

	s.logger.Info("engagement completed", zap.String("engagement_id", id))
	return s.toDTO(ctx, engagement)
}

// Cancel moves any non-terminal engagement to annulé.
func (s *EngagementService) Cancel(ctx context.Context, id string, req *domain.CancelEngagementRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	engagement.Status = domain.StatusAnnule
	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to cancel engagement: %w", err)
	}

	reason := ""
	if req != nil {
		reason = req.Reason
	}
	s.logger.Info("engagement cancelled",
		zap.String("engagement_id", id),
		zap.String("reason", reason),
	)
	return s.toDTO(ctx, engagement)
}

// MarkPaid settles a sent invoice.
func (s *EngagementService) MarkPaid(ctx context.Context, id string) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindFacture {
		return nil, ErrInvalidTransition
	}
	if engagement.Status != domain.StatusEnvoye {
		return nil, ErrInvalidTransition
	}

	engagement.Status = domain.StatusPaye
	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to mark engagement paid: %w", err)
	}

	s.logger.Info("invoice paid", zap.String("engagement_id", id))
	return s.toDTO(ctx, engagement)
}

// SendDocument emails a quote or an invoice to the given client contacts.
// This is the only path that appends to send history. For a quote the
// commercial quoteStatus moves to envoyé; both kinds get a document
// number allocated on first send if they lack one.
func (s *EngagementService) SendDocument(ctx context.Context, id string, req *domain.SendQuoteRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindDevis && engagement.Kind != domain.KindFacture {
		return nil, ErrInvalidTransition
	}
	if engagement.Status == domain.StatusAnnule || engagement.Status == domain.StatusPaye {
		return nil, ErrInvalidTransition
	}
	if engagement.Kind == domain.KindDevis && engagement.QuoteStatus != nil && engagement.QuoteStatus.IsSettled() {
		return nil, ErrQuoteAlreadySettled
	}

	// Fail fast before mutating: every target contact must exist, be
	// active and belong to the engagement's client.
	for _, contactID := range req.ContactIDs {
		contact, err := s.clients.GetContact(ctx, contactID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrContactNotFound
			}
			return nil, fmt.Errorf("failed to resolve contact: %w", err)
		}
		if contact.ClientID != engagement.ClientID || !contact.Active {
			return nil, ErrContactNotFound
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.engagements.WithTx(tx)

		if engagement.DocumentNumber() == nil {
			all, err := repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list engagements for numbering: %w", err)
			}
			number := numbering.NextNumber(all, engagement.Kind, time.Now())
			if engagement.Kind == domain.KindDevis {
				engagement.QuoteNumber = &number
			} else {
				engagement.InvoiceNumber = &number
			}
		}

		// Sending a quote moves only the commercial axis; the generic
		// scheduling status is a facture concern here.
		if engagement.Kind == domain.KindDevis {
			qs := domain.QuoteEnvoye
			engagement.QuoteStatus = &qs
		} else {
			engagement.Status = domain.StatusEnvoye
		}
		engagement.SendHistory = append(engagement.SendHistory, domain.SendRecord{
			ID:         uuid.NewString(),
			ContactIDs: req.ContactIDs,
			Subject:    req.Subject,
			SentAt:     time.Now().UTC(),
		})

		// Recipients become part of the engagement's contact list.
		known := make(map[string]struct{}, len(engagement.ContactIDs))
		for _, contactID := range engagement.ContactIDs {
			known[contactID] = struct{}{}
		}
		for _, contactID := range req.ContactIDs {
			if _, ok := known[contactID]; !ok {
				engagement.ContactIDs = append(engagement.ContactIDs, contactID)
				known[contactID] = struct{}{}
			}
		}

		return repo.Update(ctx, engagement)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send document: %w", err)
	}

	s.logger.Info("document sent",
		zap.String("engagement_id", id),
		zap.String("kind", string(engagement.Kind)),
		zap.Int("contacts", len(req.ContactIDs)),
	)
	return s.toDTO(ctx, engagement)
}

// SettleQuote records the commercial outcome of a sent quote.
func (s *EngagementService) SettleQuote(ctx context.Context, id string, req *domain.SettleQuoteRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindDevis {
		return nil, ErrNotAQuote
	}
	if engagement.QuoteStatus == nil || *engagement.QuoteStatus != domain.QuoteEnvoye {
		if engagement.QuoteStatus != nil && engagement.QuoteStatus.IsSettled() {
			return nil, ErrQuoteAlreadySettled
		}
		return nil, ErrInvalidTransition
	}

	outcome := domain.QuoteRefuse
	if req.Accepted {
		outcome = domain.QuoteAccepte
	}
	engagement.QuoteStatus = &outcome

	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to settle quote: %w", err)
	}

	s.logger.Info("quote settled",
		zap.String("engagement_id", id),
		zap.String("outcome", string(outcome)),
		zap.String("reason", req.Reason),
	)
	return s.toDTO(ctx, engagement)
}

// GenerateQuote allocates the quote number on first generation and
// returns the display-ready quote payload. Generating the document does
// not change the engagement status.
func (s *EngagementService) GenerateQuote(ctx context.Context, id string) (*domain.DocumentDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindDevis {
		return nil, ErrNotAQuote
	}

	if engagement.QuoteNumber == nil {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			repo := s.engagements.WithTx(tx)
			all, err := repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list engagements for numbering: %w", err)
			}
			number := numbering.NextNumber(all, domain.KindDevis, time.Now())
			engagement.QuoteNumber = &number
			return repo.Update(ctx, engagement)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to allocate quote number: %w", err)
		}
		s.logger.Info("quote number allocated",
			zap.String("engagement_id", id),
			zap.String("number", *engagement.QuoteNumber),
		)
	}

	return s.buildDocument(ctx, engagement)
}

// GenerateInvoice issues an invoice from a service engagement. The
// service becomes réalisé (when not already) and keeps the invoice
// number for traceability; a new facture engagement is created with a
// copy of the pricing inputs frozen at this moment, so later edits to
// the service never alter the issued invoice. Both writes and the number
// allocation share one transaction.
func (s *EngagementService) GenerateInvoice(ctx context.Context, id string, req *domain.GenerateInvoiceRequest) (*domain.GenerateInvoiceResponse, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement.Kind != domain.KindService {
		return nil, ErrNotAService
	}
	if engagement.Status == domain.StatusAnnule {
		return nil, ErrInvalidTransition
	}

	// Fail fast: invoice generation needs a resolvable client, service
	// and issuing company.
	if _, err := s.clients.GetByID(ctx, engagement.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	if _, err := s.catalog.GetService(ctx, engagement.ServiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to resolve service: %w", err)
	}

	companyID := req.CompanyID
	if companyID == nil {
		companyID = engagement.CompanyID
	}
	company := s.resolveCompany(ctx, &domain.Engagement{CompanyID: companyID})
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	if companyID == nil {
		companyID = &company.ID
	}

	// The VAT treatment is resolved now and frozen onto both records, so
	// later changes to the company default never reprice the invoice.
	frozenVat := domain.VatDisabled
	if pricing.ResolveVatEnabled(engagement.InvoiceVat, company, s.vat.DefaultEnabled) {
		frozenVat = domain.VatEnabled
	}

	var invoice *domain.Engagement
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.engagements.WithTx(tx)

		all, err := repo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list engagements for numbering: %w", err)
		}

		// An already-stamped number is reused verbatim; once allocated a
		// document number never changes.
		var number string
		if engagement.InvoiceNumber != nil {
			number = *engagement.InvoiceNumber
		} else {
			number = numbering.NextNumber(all, domain.KindFacture, time.Now())
		}

		// The service keeps the number and VAT treatment for traceability
		// but its own record stays a service.
		engagement.Status = domain.StatusRealise
		engagement.InvoiceNumber = &number
		engagement.CompanyID = companyID
		engagement.InvoiceVat = frozenVat
		if err := repo.Update(ctx, engagement); err != nil {
			return fmt.Errorf("failed to update source engagement: %w", err)
		}

		// Re-generation returns the facture already issued under this
		// number instead of inserting a duplicate.
		for i := range all {
			existing := &all[i]
			if existing.Kind == domain.KindFacture && existing.InvoiceNumber != nil && *existing.InvoiceNumber == number {
				invoice = existing
				return nil
			}
		}

		invoice = &domain.Engagement{
			BaseModel:        domain.BaseModel{ID: uuid.NewString()},
			ClientID:         engagement.ClientID,
			CompanyID:        companyID,
			ServiceID:        engagement.ServiceID,
			OptionIDs:        append(domain.StringList{}, engagement.OptionIDs...),
			OptionOverrides:  engagement.OptionOverrides.Clone(),
			AdditionalCharge: engagement.AdditionalCharge,
			Kind:             domain.KindFacture,
			Status:           domain.StatusEnvoye,
			ScheduledAt:      engagement.ScheduledAt,
			InvoiceNumber:    &number,
			InvoiceVat:       frozenVat,
			ContactIDs:       append(domain.StringList{}, engagement.ContactIDs...),
			SendHistory:      domain.SendHistoryList{},
			SupportType:      engagement.SupportType,
			SupportDetail:    engagement.SupportDetail,
		}
		if err := repo.Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice engagement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice generated",
		zap.String("service_id", engagement.ID),
		zap.String("invoice_id", invoice.ID),
		zap.String("number", *invoice.InvoiceNumber),
	)

	serviceDTO, err := s.toDTO(ctx, engagement)
	if err != nil {
		return nil, err
	}
	invoiceDTO, err := s.toDTO(ctx, invoice)
	if err != nil {
		return nil, err
	}
	document, err := s.buildDocument(ctx, invoice)
	if err != nil {
		return nil, err
	}

	return &domain.GenerateInvoiceResponse{
		Service:  serviceDTO,
		Invoice:  invoiceDTO,
		Document: document,
	}, nil
}
