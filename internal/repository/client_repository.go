package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/washandgo/engagement-api/internal/domain"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id).Error
}

func (r *ClientRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Client, int64, error) {
	var clients []domain.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Client{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Contacts").
		Offset(offset).Limit(pageSize).
		Order("name ASC").
		Find(&clients).Error

	return clients, total, err
}

func (r *ClientRepository) AddContact(ctx context.Context, contact *domain.ClientContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ClientRepository) GetContact(ctx context.Context, contactID string) (*domain.ClientContact, error) {
	var contact domain.ClientContact
	err := r.db.WithContext(ctx).Where("id = ?", contactID).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ActiveContacts returns the client's contacts that can receive documents.
func (r *ClientRepository) ActiveContacts(ctx context.Context, clientID string) ([]domain.ClientContact, error) {
	var contacts []domain.ClientContact
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND active = ?", clientID, true).
		Order("billing_default DESC, name ASC").
		Find(&contacts).Error
	return contacts, err
}
