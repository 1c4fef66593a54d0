package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/washandgo/engagement-api/internal/domain"
)

// EngagementFilter narrows List results. Zero values mean no filtering.
type EngagementFilter struct {
	Kind     domain.EngagementKind
	Status   domain.EngagementStatus
	ClientID string
	Year     int
}

type EngagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *EngagementRepository) WithTx(tx *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: tx}
}

func (r *EngagementRepository) Create(ctx context.Context, engagement *domain.Engagement) error {
	return r.db.WithContext(ctx).Create(engagement).Error
}

func (r *EngagementRepository) GetByID(ctx context.Context, id string) (*domain.Engagement, error) {
	var engagement domain.Engagement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&engagement).Error
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}

func (r *EngagementRepository) Update(ctx context.Context, engagement *domain.Engagement) error {
	return r.db.WithContext(ctx).Save(engagement).Error
}

func (r *EngagementRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Engagement{}, "id = ?", id).Error
}

func (r *EngagementRepository) List(ctx context.Context, page, pageSize int, filter EngagementFilter) ([]domain.Engagement, int64, error) {
	var engagements []domain.Engagement
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Engagement{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Year != 0 {
		from := time.Date(filter.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("scheduled_at >= ? AND scheduled_at < ?", from, from.AddDate(1, 0, 0))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("scheduled_at DESC").Find(&engagements).Error

	return engagements, total, err
}

// ListAll returns the full engagement set, used by document number
// allocation and by the reconciliation merge. Both need the complete
// list rather than a page.
func (r *EngagementRepository) ListAll(ctx context.Context) ([]domain.Engagement, error) {
	var engagements []domain.Engagement
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&engagements).Error
	return engagements, err
}

// UpsertAll writes a merged engagement set back to the local store,
// replacing each row by primary key. Used after a reconciliation merge
// where the remote copy wins for every id it knows.
func (r *EngagementRepository) UpsertAll(ctx context.Context, engagements []domain.Engagement) error {
	if len(engagements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&engagements).Error
}
