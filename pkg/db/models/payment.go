package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// Payment is the 1:1 financial record of a booking. Confirmation is
// monotonic: once CONFIRMADO it never moves again.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID   uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	Status      enums.PaymentStatus `gorm:"column:status;not null"`
	BillingID   *string             `gorm:"column:billing_id"`
	PaymentURL  *string             `gorm:"column:payment_url"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	ConfirmedAt *time.Time          `gorm:"column:confirmed_at"`
}
