package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// Provider is a service professional that accepts bookings.
type Provider struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Subject      string          `gorm:"column:subject;not null;unique"`
	TradeName    string          `gorm:"column:trade_name;not null"`
	Email        string          `gorm:"column:email"`
	Phone        string          `gorm:"column:phone"`
	ServicePrice decimal.Decimal `gorm:"column:service_price;type:numeric(10,2)"`
	Address      types.Address   `gorm:"embedded;embeddedPrefix:addr_"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
