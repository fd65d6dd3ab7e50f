// Package idempotency guards event consumers against duplicate deliveries.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ajeitai/marketplace-backend/pkg/redis"
)

const defaultTTL = 72 * time.Hour

// Manager records processed event ids so redeliveries become no-ops.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a Manager backed by the provided store.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed returns true when the event was already handled by the
// given consumer. The first caller atomically claims the event id.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	if consumer == "" || eventID == "" {
		return false, errors.New("consumer and event id are required")
	}
	key := m.processedKey(consumer, eventID)
	claimed, err := m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, fmt.Errorf("marking event processed: %w", err)
	}
	return !claimed, nil
}

// Delete drops the processed marker, allowing the event to be handled again.
func (m *Manager) Delete(ctx context.Context, consumer, eventID string) error {
	if consumer == "" || eventID == "" {
		return errors.New("consumer and event id are required")
	}
	return m.store.Del(ctx, m.processedKey(consumer, eventID))
}

func (m *Manager) processedKey(consumer, eventID string) string {
	return m.store.IdempotencyKey("evt:processed:"+consumer, eventID)
}
