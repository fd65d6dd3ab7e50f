package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// Withdrawal is a provider's request to sweep the wallet balance out.
type Withdrawal struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID      uuid.UUID              `gorm:"column:provider_id;type:uuid;not null;index"`
	RequestedAmount decimal.Decimal        `gorm:"column:requested_amount;type:numeric(10,2);not null"`
	NetAmount       decimal.Decimal        `gorm:"column:net_amount;type:numeric(10,2);not null"`
	Status          enums.WithdrawalStatus `gorm:"column:status;not null"`
	RequestedAt     time.Time              `gorm:"column:requested_at;autoCreateTime"`
	CompletedAt     *time.Time             `gorm:"column:completed_at"`
}
