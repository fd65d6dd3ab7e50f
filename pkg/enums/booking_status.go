package enums

import "fmt"

// BookingStatus tracks the lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPendente   BookingStatus = "PENDENTE"
	BookingStatusAceito     BookingStatus = "ACEITO"
	BookingStatusConfirmado BookingStatus = "CONFIRMADO"
	BookingStatusRealizado  BookingStatus = "REALIZADO"
	BookingStatusRecusado   BookingStatus = "RECUSADO"
	BookingStatusCancelado  BookingStatus = "CANCELADO"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPendente,
	BookingStatusAceito,
	BookingStatusConfirmado,
	BookingStatusRealizado,
	BookingStatusRecusado,
	BookingStatusCancelado,
}

// String implements fmt.Stringer.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRealizado, BookingStatusRecusado, BookingStatusCancelado:
		return true
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

// ActiveBookingStatuses are the statuses that occupy a provider's slot for
// conflict detection.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPendente,
		BookingStatusAceito,
		BookingStatusConfirmado,
	}
}
