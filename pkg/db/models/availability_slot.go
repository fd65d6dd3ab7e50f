package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a recurring weekly window during which a provider
// accepts bookings. Weekday follows ISO-8601: 1 = Monday, 7 = Sunday.
// Start/End are "HH:MM" wall-clock strings; containment is half-open.
type AvailabilitySlot struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID uuid.UUID `gorm:"column:provider_id;type:uuid;not null;index"`
	Weekday    int       `gorm:"column:weekday;not null"`
	Start      string    `gorm:"column:start_time;not null"`
	End        string    `gorm:"column:end_time;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
