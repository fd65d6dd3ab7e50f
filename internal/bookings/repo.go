// Package bookings implements the appointment state machine, the heart of
// the marketplace flow.
package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ExistsActiveAt(ctx context.Context, providerID uuid.UUID, at time.Time) (bool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByClient(ctx context.Context, clientID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ExistsActiveAt reports whether the provider already holds a live booking at
// the exact timestamp. Terminal statuses do not block the slot.
func (r *repository) ExistsActiveAt(ctx context.Context, providerID uuid.UUID, at time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("provider_id = ? AND scheduled_at = ? AND status IN ?", providerID, at, enums.ActiveBookingStatuses()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Where("client_id = ?", clientID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var bookings []models.Booking
	if err := query.Order("scheduled_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var bookings []models.Booking
	if err := query.Order("scheduled_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
