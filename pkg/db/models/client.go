package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// Client is a consumer account that books services.
type Client struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Subject   string        `gorm:"column:subject;not null;unique"`
	Name      string        `gorm:"column:name;not null"`
	Email     string        `gorm:"column:email"`
	Phone     string        `gorm:"column:phone"`
	TaxID     string        `gorm:"column:tax_id"`
	Address   types.Address `gorm:"embedded;embeddedPrefix:addr_"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
