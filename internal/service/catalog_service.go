package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/domain"
	"github.com/washandgo/engagement-api/internal/repository"
)

// CatalogService manages the service catalog. Catalog entries are
// reference data for the pricing engine; engagements keep only option
// ids, so catalog edits never rewrite existing engagements.
type CatalogService struct {
	repo   *repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) CreateService(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	svc := &domain.Service{
		BaseModel:       domain.BaseModel{ID: uuid.NewString()},
		Name:            req.Name,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		BaseDurationMin: req.BaseDurationMin,
		IsActive:        true,
	}
	for _, opt := range req.Options {
		svc.Options = append(svc.Options, domain.ServiceOption{
			BaseModel:          domain.BaseModel{ID: uuid.NewString()},
			ServiceID:          svc.ID,
			Label:              opt.Label,
			UnitPrice:          opt.UnitPrice,
			DefaultDurationMin: opt.DefaultDurationMin,
			DisplayOrder:       opt.DisplayOrder,
		})
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("catalog service created",
		zap.String("service_id", svc.ID),
		zap.String("name", svc.Name),
		zap.Int("options", len(svc.Options)),
	)
	return svc, nil
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	services, err := s.repo.ListServices(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id string, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.BasePrice != nil {
		svc.BasePrice = req.BasePrice
	}
	if req.BaseDurationMin != nil {
		svc.BaseDurationMin = req.BaseDurationMin
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return s.GetService(ctx, id)
}

func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	s.logger.Info("catalog service deleted", zap.String("service_id", id))
	return nil
}

func (s *CatalogService) AddOption(ctx context.Context, serviceID string, req *domain.CreateServiceOptionRequest) (*domain.ServiceOption, error) {
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	option := &domain.ServiceOption{
		BaseModel:          domain.BaseModel{ID: uuid.NewString()},
		ServiceID:          serviceID,
		Label:              req.Label,
		UnitPrice:          req.UnitPrice,
		DefaultDurationMin: req.DefaultDurationMin,
		DisplayOrder:       req.DisplayOrder,
	}
	if err := s.repo.AddOption(ctx, option); err != nil {
		return nil, fmt.Errorf("failed to add option: %w", err)
	}
	return option, nil
}

func (s *CatalogService) DeleteOption(ctx context.Context, optionID string) error {
	if _, err := s.repo.GetOption(ctx, optionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get option: %w", err)
	}
	if err := s.repo.DeleteOption(ctx, optionID); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}
