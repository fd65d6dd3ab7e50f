package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// Notification stores in-app notification payloads for clients and
// providers. EventID is unique so the consumer can replay at-least-once
// deliveries without duplicating rows.
type Notification struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientRole enums.ActorRole `gorm:"column:recipient_role;not null"`
	RecipientID   uuid.UUID       `gorm:"column:recipient_id;type:uuid;not null;index"`
	Kind          string          `gorm:"column:kind;not null"`
	Title         string          `gorm:"column:title;not null"`
	Message       string          `gorm:"column:message;not null"`
	Link          *string         `gorm:"column:link"`
	EventID       string          `gorm:"column:event_id;not null;uniqueIndex:ux_notifications_event"`
	ReadAt        *time.Time      `gorm:"column:read_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
