// Package availability manages a provider's recurring weekly booking windows.
package availability

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
)

// Repository defines persistence operations for availability slots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReplaceForProvider(ctx context.Context, providerID uuid.UUID, slots []models.AvailabilitySlot) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.AvailabilitySlot, error)
	ListByProviderAndWeekday(ctx context.Context, providerID uuid.UUID, weekday int) ([]models.AvailabilitySlot, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an availability repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ReplaceForProvider swaps the provider's whole slot set. Callers run it
// inside a transaction so the delete and insert land atomically.
func (r *repository) ReplaceForProvider(ctx context.Context, providerID uuid.UUID, slots []models.AvailabilitySlot) error {
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Delete(&models.AvailabilitySlot{}).Error; err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("weekday ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repository) ListByProviderAndWeekday(ctx context.Context, providerID uuid.UUID, weekday int) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND weekday = ?", providerID, weekday).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
