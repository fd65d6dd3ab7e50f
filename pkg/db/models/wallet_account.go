package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletAccount holds a provider's available balance. Only the wallet and
// withdrawal services mutate it, always inside a transaction.
type WalletAccount struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID       uuid.UUID       `gorm:"column:provider_id;type:uuid;not null;uniqueIndex"`
	AvailableBalance decimal.Decimal `gorm:"column:available_balance;type:numeric(10,2);not null"`
	LastWithdrawalAt *time.Time      `gorm:"column:last_withdrawal_at;type:date"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
