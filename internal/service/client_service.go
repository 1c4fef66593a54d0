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

type ClientService struct {
	repo   *repository.ClientRepository
	logger *zap.Logger
}

func NewClientService(repo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.Client, error) {
	client := &domain.Client{
		BaseModel:  domain.BaseModel{ID: uuid.NewString()},
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Notes:      req.Notes,
	}
	for _, c := range req.Contacts {
		client.Contacts = append(client.Contacts, domain.ClientContact{
			BaseModel:      domain.BaseModel{ID: uuid.NewString()},
			ClientID:       client.ID,
			Name:           c.Name,
			Email:          c.Email,
			Phone:          c.Phone,
			Active:         c.Active,
			BillingDefault: c.BillingDefault,
		})
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created", zap.String("client_id", client.ID), zap.String("name", client.Name))
	return client, nil
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, search string) ([]domain.Client, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return s.repo.List(ctx, page, pageSize, search)
}

func (s *ClientService) Update(ctx context.Context, id string, req *domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.PostalCode != nil {
		client.PostalCode = *req.PostalCode
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

func (s *ClientService) AddContact(ctx context.Context, clientID string, req *domain.CreateContactRequest) (*domain.ClientContact, error) {
	if _, err := s.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	contact := &domain.ClientContact{
		BaseModel:      domain.BaseModel{ID: uuid.NewString()},
		ClientID:       clientID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Active:         req.Active,
		BillingDefault: req.BillingDefault,
	}
	if err := s.repo.AddContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}
	return contact, nil
}
