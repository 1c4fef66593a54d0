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

type CompanyService struct {
	repo   *repository.CompanyRepository
	logger *zap.Logger
}

func NewCompanyService(repo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{repo: repo, logger: logger}
}

func (s *CompanyService) Create(ctx context.Context, req *domain.CreateCompanyRequest) (*domain.Company, error) {
	vatEnabled := true
	if req.VatEnabled != nil {
		vatEnabled = *req.VatEnabled
	}
	vatRate := req.VatRate
	if vatRate == 0 {
		vatRate = 20
	}

	company := &domain.Company{
		BaseModel:  domain.BaseModel{ID: uuid.NewString()},
		Name:       req.Name,
		Siret:      req.Siret,
		VatNumber:  req.VatNumber,
		Address:    req.Address,
		Email:      req.Email,
		Phone:      req.Phone,
		VatEnabled: vatEnabled,
		VatRate:    vatRate,
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("company created", zap.String("company_id", company.ID), zap.String("name", company.Name))
	return company, nil
}

func (s *CompanyService) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context) ([]domain.Company, error) {
	return s.repo.List(ctx)
}

func (s *CompanyService) Update(ctx context.Context, id string, req *domain.UpdateCompanyRequest) (*domain.Company, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Siret != nil {
		company.Siret = *req.Siret
	}
	if req.VatNumber != nil {
		company.VatNumber = *req.VatNumber
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.VatEnabled != nil {
		company.VatEnabled = *req.VatEnabled
	}
	if req.VatRate != nil {
		company.VatRate = *req.VatRate
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}
