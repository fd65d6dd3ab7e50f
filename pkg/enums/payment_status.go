package enums

import "fmt"

// PaymentStatus tracks the lifecycle of a booking payment.
type PaymentStatus string

const (
	PaymentStatusNaoAplicavel PaymentStatus = "NAO_APLICAVEL"
	PaymentStatusPendente     PaymentStatus = "PENDENTE"
	PaymentStatusConfirmado   PaymentStatus = "CONFIRMADO"
	PaymentStatusCancelado    PaymentStatus = "CANCELADO"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusNaoAplicavel,
	PaymentStatusPendente,
	PaymentStatusConfirmado,
	PaymentStatusCancelado,
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
