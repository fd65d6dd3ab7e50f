package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// Subscription is one billing period record of a provider's platform
// subscription. A provider accumulates records over time; whether they are
// "active" is decided by the newest ATIVA record's end date.
type Subscription struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID    uuid.UUID                `gorm:"column:provider_id;type:uuid;not null;index"`
	Status        enums.SubscriptionStatus `gorm:"column:status;not null"`
	StartDate     *time.Time               `gorm:"column:start_date;type:date"`
	EndDate       *time.Time               `gorm:"column:end_date;type:date"`
	LastPaymentAt *time.Time               `gorm:"column:last_payment_at"`
	BillingID     *string                  `gorm:"column:billing_id"`
	CurrentPrice  decimal.Decimal          `gorm:"column:current_price;type:numeric(10,2)"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
