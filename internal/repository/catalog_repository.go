package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/domain"
)

// CatalogRepository manages the service catalog (services and their
// options). The pricing engine reads catalog snapshots through it.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateService(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, label ASC")
		}).
		Where("id = ?", id).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *CatalogRepository) UpdateService(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Service{}, "id = ?", id).Error
}

// ListServices returns the catalog with options preloaded. The pricing
// engine treats the returned slice as an immutable snapshot.
func (r *CatalogRepository) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	var services []domain.Service
	query := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, label ASC")
		})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&services).Error
	return services, err
}

func (r *CatalogRepository) AddOption(ctx context.Context, option *domain.ServiceOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *CatalogRepository) GetOption(ctx context.Context, id string) (*domain.ServiceOption, error) {
	var option domain.ServiceOption
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *CatalogRepository) UpdateOption(ctx context.Context, option *domain.ServiceOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

func (r *CatalogRepository) DeleteOption(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.ServiceOption{}, "id = ?", id).Error
}
