package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	Subject    string          `json:"subject"`
	Role       enums.ActorRole `json:"role,omitempty"`
	ClientID   *uuid.UUID      `json:"clientId,omitempty"`
	ProviderID *uuid.UUID      `json:"providerId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events
// and shipped to the broker verbatim.
type PayloadEnvelope struct {
	Version       int                       `json:"version"`
	EventID       string                    `json:"eventId"`
	EventType     enums.OutboxEventType     `json:"eventType"`
	AggregateType enums.OutboxAggregateType `json:"aggregateType"`
	AggregateID   uuid.UUID                 `json:"aggregateId"`
	OccurredAt    time.Time                 `json:"occurredAt"`
	Actor         *ActorRef                 `json:"actor,omitempty"`
	Data          json.RawMessage           `json:"data"`
}
