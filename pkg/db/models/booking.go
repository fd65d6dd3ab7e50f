package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// Booking is the aggregate root of a scheduled service engagement. The
// embedded address is snapshotted from the client at creation and never
// mutated afterwards.
type Booking struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID      uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	ProviderID    uuid.UUID           `gorm:"column:provider_id;type:uuid;not null;index"`
	ScheduledAt   time.Time           `gorm:"column:scheduled_at;not null"`
	Status        enums.BookingStatus `gorm:"column:status;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	ServicePrice  decimal.Decimal     `gorm:"column:service_price;type:numeric(10,2)"`
	Note          string              `gorm:"column:note"`
	Address       types.Address       `gorm:"embedded;embeddedPrefix:addr_"`

	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	AcceptedAt  *time.Time `gorm:"column:accepted_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`

	CheckinAt         *time.Time `gorm:"column:checkin_at"`
	CheckinLatitude   *float64   `gorm:"column:checkin_latitude"`
	CheckinLongitude  *float64   `gorm:"column:checkin_longitude"`
	CheckoutAt        *time.Time `gorm:"column:checkout_at"`
	CheckoutLatitude  *float64   `gorm:"column:checkout_latitude"`
	CheckoutLongitude *float64   `gorm:"column:checkout_longitude"`

	CompletionPhotoPath *string `gorm:"column:completion_photo_path"`
}
