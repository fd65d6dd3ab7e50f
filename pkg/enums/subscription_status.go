package enums

import "fmt"

// SubscriptionStatus tracks a provider's platform subscription record.
type SubscriptionStatus string

const (
	SubscriptionStatusAtiva     SubscriptionStatus = "ATIVA"
	SubscriptionStatusAtrasada  SubscriptionStatus = "ATRASADA"
	SubscriptionStatusCancelada SubscriptionStatus = "CANCELADA"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusAtiva,
	SubscriptionStatusAtrasada,
	SubscriptionStatusCancelada,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubscriptionStatus.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriptionStatus converts raw input into a SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	for _, candidate := range validSubscriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}
