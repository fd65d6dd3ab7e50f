package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// WalletTransaction is an immutable ledger entry. At most one CREDIT entry
// may reference a payment; the unique index on payment_id backs the
// idempotency of settlement.
type WalletTransaction struct {
	ID           uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID   uuid.UUID                   `gorm:"column:provider_id;type:uuid;not null;index"`
	Type         enums.WalletTransactionType `gorm:"column:type;not null"`
	GrossAmount  decimal.Decimal             `gorm:"column:gross_amount;type:numeric(10,2);not null"`
	PlatformFee  decimal.Decimal             `gorm:"column:platform_fee;type:numeric(10,2);not null"`
	NetAmount    decimal.Decimal             `gorm:"column:net_amount;type:numeric(10,2);not null"`
	BookingID    *uuid.UUID                  `gorm:"column:booking_id;type:uuid"`
	PaymentID    *uuid.UUID                  `gorm:"column:payment_id;type:uuid;uniqueIndex:ux_wallet_transactions_payment,where:payment_id IS NOT NULL"`
	WithdrawalID *uuid.UUID                  `gorm:"column:withdrawal_id;type:uuid"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
