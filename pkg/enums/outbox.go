package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateBooking      OutboxAggregateType = "booking"
	AggregatePayment      OutboxAggregateType = "payment"
	AggregateSubscription OutboxAggregateType = "subscription"
	AggregateWithdrawal   OutboxAggregateType = "withdrawal"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregatePayment,
	AggregateSubscription,
	AggregateWithdrawal,
}

// IsValid reports whether the value matches a canonical aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventBookingCreated       OutboxEventType = "booking_created"
	EventBookingAccepted      OutboxEventType = "booking_accepted"
	EventBookingRefused       OutboxEventType = "booking_refused"
	EventBookingCanceled      OutboxEventType = "booking_canceled"
	EventBookingConfirmed     OutboxEventType = "booking_confirmed"
	EventBookingCompleted     OutboxEventType = "booking_completed"
	EventPaymentLinkAvailable OutboxEventType = "payment_link_available"
	EventWalletCredited       OutboxEventType = "wallet_credited"
	EventWithdrawalRequested  OutboxEventType = "withdrawal_requested"

	EventSubscriptionRenewalRequested OutboxEventType = "subscription_renewal_requested"
	EventSubscriptionActivated        OutboxEventType = "subscription_activated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingCreated,
	EventBookingAccepted,
	EventBookingRefused,
	EventBookingCanceled,
	EventBookingConfirmed,
	EventBookingCompleted,
	EventPaymentLinkAvailable,
	EventWalletCredited,
	EventWithdrawalRequested,
	EventSubscriptionRenewalRequested,
	EventSubscriptionActivated,
}

// IsValid reports whether the value matches a canonical event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
