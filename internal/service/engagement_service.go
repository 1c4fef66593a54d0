package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/mapper"
	"github.com/washandgo/engagement-api/internal/pricing"
	"github.com/washandgo/engagement-api/internal/repository"
)

// EngagementService implements engagement CRUD, pricing and the document
// lifecycle. Lifecycle transitions live in lifecycle_service.go on the
// same receiver.
type EngagementService struct {
	db          *gorm.DB
	engagements *repository.EngagementRepository
	clients     *repository.ClientRepository
	companies   *repository.CompanyRepository
	catalog     *repository.CatalogRepository
	vat         config.VatConfig
	logger      *zap.Logger
}

func NewEngagementService(
	db *gorm.DB,
	engagements *repository.EngagementRepository,
	clients *repository.ClientRepository,
	companies *repository.CompanyRepository,
	catalog *repository.CatalogRepository,
	vat config.VatConfig,
	logger *zap.Logger,
) *EngagementService {
	return &EngagementService{
		db:          db,
		engagements: engagements,
		clients:     clients,
		companies:   companies,
		catalog:     catalog,
		vat:         vat,
		logger:      logger,
	}
}

func (s *EngagementService) Create(ctx context.Context, req *domain.CreateEngagementRequest) (*domain.EngagementDTO, error) {
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	if _, err := s.catalog.GetService(ctx, req.ServiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to resolve service: %w", err)
	}

	kind := req.Kind
	if !kind.IsValid() {
		kind = domain.KindService
	}

	engagement := &domain.Engagement{
		BaseModel:        domain.BaseModel{ID: uuid.NewString()},
		ClientID:         req.ClientID,
		CompanyID:        req.CompanyID,
		ServiceID:        req.ServiceID,
		OptionIDs:        domain.StringList(req.OptionIDs),
		OptionOverrides:  req.OptionOverrides,
		AdditionalCharge: req.AdditionalCharge,
		Kind:             kind,
		ScheduledAt:      req.ScheduledAt,
		InvoiceVat:       domain.VatInherit,
		ContactIDs:       domain.StringList(req.ContactIDs),
		SendHistory:      domain.SendHistoryList{},
		SupportType:      req.SupportType,
		SupportDetail:    req.SupportDetail,
	}
	if engagement.OptionIDs == nil {
		engagement.OptionIDs = domain.StringList{}
	}
	if engagement.OptionOverrides == nil {
		engagement.OptionOverrides = domain.OverrideMap{}
	}
	if engagement.ContactIDs == nil {
		engagement.ContactIDs = domain.StringList{}
	}

	// New services are planned immediately; documents start as drafts.
	switch kind {
	case domain.KindDevis:
		engagement.Status = domain.StatusBrouillon
		qs := domain.QuoteBrouillon
		engagement.QuoteStatus = &qs
	case domain.KindFacture:
		engagement.Status = domain.StatusBrouillon
	default:
		engagement.Status = domain.StatusPlanifie
	}

	if err := s.engagements.Create(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	s.logger.Info("engagement created",
		zap.String("engagement_id", engagement.ID),
		zap.String("kind", string(engagement.Kind)),
		zap.String("client_id", engagement.ClientID),
	)
	return s.toDTO(ctx, engagement)
}

func (s *EngagementService) GetByID(ctx context.Context, id string) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, engagement)
}

func (s *EngagementService) List(ctx context.Context, page, pageSize int, filter repository.EngagementFilter) ([]domain.EngagementDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	engagements, total, err := s.engagements.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list engagements: %w", err)
	}

	// One catalog snapshot prices the whole page.
	services, err := s.catalog.ListServices(ctx, false)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := pricing.NewCatalog(services)

	dtos := make([]domain.EngagementDTO, 0, len(engagements))
	for i := range engagements {
		e := &engagements[i]
		totals, err := s.totalsWith(ctx, e, catalog)
		if err != nil {
			return nil, 0, err
		}
		dtos = append(dtos, mapper.ToEngagementDTO(e, totals))
	}
	return dtos, total, nil
}

func (s *EngagementService) Update(ctx context.Context, id string, req *domain.UpdateEngagementRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyID != nil {
		engagement.CompanyID = req.CompanyID
	}
	if req.OptionIDs != nil {
		engagement.OptionIDs = domain.StringList(*req.OptionIDs)
	}
	if req.OptionOverrides != nil {
		engagement.OptionOverrides = *req.OptionOverrides
	}
	if req.AdditionalCharge != nil {
		engagement.AdditionalCharge = *req.AdditionalCharge
	}
	if req.ScheduledAt != nil {
		engagement.ScheduledAt = *req.ScheduledAt
	}
	if req.ContactIDs != nil {
		engagement.ContactIDs = domain.StringList(*req.ContactIDs)
	}
	if req.SupportType != nil {
		engagement.SupportType = *req.SupportType
	}
	if req.SupportDetail != nil {
		engagement.SupportDetail = *req.SupportDetail
	}

	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to update engagement: %w", err)
	}
	return s.toDTO(ctx, engagement)
}

func (s *EngagementService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.engagements.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete engagement: %w", err)
	}
	s.logger.Info("engagement deleted", zap.String("engagement_id", id))
	return nil
}

// SetVatOverride forces or resets the engagement's VAT treatment.
// Enabled nil resets to inherit, which is a distinct state from a forced
// false.
func (s *EngagementService) SetVatOverride(ctx context.Context, id string, req *domain.SetVatOverrideRequest) (*domain.EngagementDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	engagement.InvoiceVat = domain.VatOverrideFromBool(req.Enabled)
	if err := s.engagements.Update(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to update engagement: %w", err)
	}

	s.logger.Info("engagement VAT override set",
		zap.String("engagement_id", id),
		zap.String("override", string(engagement.InvoiceVat)),
	)
	return s.toDTO(ctx, engagement)
}

// GetTotals computes the display-ready totals without touching the record.
func (s *EngagementService) GetTotals(ctx context.Context, id string) (*domain.TotalsDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.totals(ctx, engagement)
}

// GetDocument renders the display payload for an engagement's document.
// Viewing or printing a document never changes status; number allocation
// happens in the lifecycle methods, so records without a number show
// their legacy label here.
func (s *EngagementService) GetDocument(ctx context.Context, id string) (*domain.DocumentDTO, error) {
	engagement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildDocument(ctx, engagement)
}

func (s *EngagementService) load(ctx context.Context, id string) (*domain.Engagement, error) {
	engagement, err := s.engagements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEngagementNotFound
		}
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	return engagement, nil
}

func (s *EngagementService) toDTO(ctx context.Context, e *domain.Engagement) (*domain.EngagementDTO, error) {
	totals, err := s.totals(ctx, e)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToEngagementDTO(e, totals)
	return &dto, nil
}

func (s *EngagementService) totals(ctx context.Context, e *domain.Engagement) (*domain.TotalsDTO, error) {
	var snapshot []domain.Service
	svc, err := s.catalog.GetService(ctx, e.ServiceID)
	switch {
	case err == nil:
		snapshot = []domain.Service{*svc}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Stale service reference; totals degrade instead of failing.
	default:
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.totalsWith(ctx, e, pricing.NewCatalog(snapshot))
}

func (s *EngagementService) totalsWith(ctx context.Context, e *domain.Engagement, catalog pricing.CatalogLookup) (*domain.TotalsDTO, error) {
	raw := pricing.ComputeTotals(e, catalog)
	raw.DurationMin = pricing.DisplayDuration(e, raw)

	company := s.resolveCompany(ctx, e)
	enabled := pricing.ResolveVatEnabled(e.InvoiceVat, company, s.vat.DefaultEnabled)
	rate := pricing.VatRateFor(company, s.vat.DefaultRate)

	dto := mapper.ToTotalsDTO(raw, enabled, rate)
	return &dto, nil
}

// resolveCompany returns the issuing company for an engagement, or nil
// when none is resolvable; VAT then falls back to the global defaults.
func (s *EngagementService) resolveCompany(ctx context.Context, e *domain.Engagement) *domain.Company {
	if e.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *e.CompanyID)
		if err == nil {
			return company
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to resolve engagement company",
				zap.String("engagement_id", e.ID),
				zap.Error(err),
			)
		}
	}
	company, err := s.companies.GetDefault(ctx)
	if err != nil {
		return nil
	}
	return company
}

func (s *EngagementService) buildDocument(ctx context.Context, e *domain.Engagement) (*domain.DocumentDTO, error) {
	totals, err := s.totals(ctx, e)
	if err != nil {
		return nil, err
	}

	var svc *domain.Service
	if loaded, err := s.catalog.GetService(ctx, e.ServiceID); err == nil {
		svc = loaded
	}
	var client *domain.Client
	if loaded, err := s.clients.GetByID(ctx, e.ClientID); err == nil {
		client = loaded
	}
	company := s.resolveCompany(ctx, e)

	doc := mapper.ToDocumentDTO(e, svc, client, company, *totals)
	return &doc, nil
}
