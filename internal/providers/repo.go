// Package providers exposes persistence for service professional profiles.
package providers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
)

// Repository defines persistence operations for provider profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, provider *models.Provider) (*models.Provider, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	FindBySubject(ctx context.Context, subject string) (*models.Provider, error)
	ListByCity(ctx context.Context, city, state string) ([]models.Provider, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a providers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, provider *models.Provider) (*models.Provider, error) {
	if err := r.db.WithContext(ctx).Create(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *repository) FindBySubject(ctx context.Context, subject string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *repository) ListByCity(ctx context.Context, city, state string) ([]models.Provider, error) {
	var providers []models.Provider
	query := r.db.WithContext(ctx).Where("LOWER(addr_city) = LOWER(?)", city)
	if state != "" {
		query = query.Where("LOWER(addr_state) = LOWER(?)", state)
	}
	if err := query.Order("trade_name ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Updates(updates).Error
}
