package types

import "strings"

// Address is the registered address of a client or provider. Bookings embed a
// copy of it as an immutable snapshot of where the service happens.
type Address struct {
	Street     string   `gorm:"column:street" json:"street"`
	District   string   `gorm:"column:district" json:"district"`
	PostalCode string   `gorm:"column:postal_code" json:"postal_code"`
	Number     string   `gorm:"column:number" json:"number"`
	Complement *string  `gorm:"column:complement" json:"complement,omitempty"`
	City       string   `gorm:"column:city" json:"city"`
	State      string   `gorm:"column:state" json:"state"`
	Latitude   *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude  *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
}

// IsRegistered reports whether the address is usable for booking validation.
func (a Address) IsRegistered() bool {
	return strings.TrimSpace(a.City) != ""
}

// SameCity compares cities case-insensitively.
func (a Address) SameCity(other Address) bool {
	return a.IsRegistered() && strings.EqualFold(strings.TrimSpace(a.City), strings.TrimSpace(other.City))
}
