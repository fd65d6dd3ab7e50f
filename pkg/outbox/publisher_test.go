package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

type stubFetcher struct {
	pending     []models.OutboxEvent
	published   []uuid.UUID
	failed      []uuid.UUID
	pruneCutoff time.Time
	pruned      int64
}

func (s *stubFetcher) FetchUnpublished(limit, _ int) ([]models.OutboxEvent, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubFetcher) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubFetcher) MarkFailed(id uuid.UUID, _ error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubFetcher) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	s.pruneCutoff = cutoff
	return s.pruned, nil
}

type stubBroker struct {
	messages map[string][]byte
	failFor  map[string]bool
}

func newStubBroker() *stubBroker {
	return &stubBroker{messages: make(map[string][]byte), failFor: make(map[string]bool)}
}

func (s *stubBroker) Publish(_ context.Context, _, messageID string, body []byte) error {
	if s.failFor[messageID] {
		return fmt.Errorf("broker unavailable")
	}
	s.messages[messageID] = body
	return nil
}

func pendingEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1,"data":{}}`),
	}
}

func newTestPublisher(t *testing.T, repo *stubFetcher, brk *stubBroker) *Publisher {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	pub, err := NewPublisher(repo, brk, "ajeitai.domain-events", config.OutboxConfig{BatchSize: 10, MaxAttempts: 3}, logg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pub
}

func TestPublishBatch(t *testing.T) {
	first := pendingEvent(enums.EventBookingCreated)
	second := pendingEvent(enums.EventBookingAccepted)
	repo := &stubFetcher{pending: []models.OutboxEvent{first, second}}
	brk := newStubBroker()

	pub := newTestPublisher(t, repo, brk)
	published, err := pub.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
	if len(repo.published) != 2 || repo.published[0] != first.ID {
		t.Fatalf("events should be marked published in order: %v", repo.published)
	}
	if string(brk.messages[first.ID.String()]) != `{"version":1,"data":{}}` {
		t.Fatalf("payload should ship verbatim")
	}
}

func TestPublishBatchMarksFailures(t *testing.T) {
	good := pendingEvent(enums.EventBookingCreated)
	bad := pendingEvent(enums.EventBookingConfirmed)
	repo := &stubFetcher{pending: []models.OutboxEvent{bad, good}}
	brk := newStubBroker()
	brk.failFor[bad.ID.String()] = true

	pub := newTestPublisher(t, repo, brk)
	published, err := pub.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 published, got %d", published)
	}
	if len(repo.failed) != 1 || repo.failed[0] != bad.ID {
		t.Fatalf("failing event should be marked, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != good.ID {
		t.Fatalf("good event should still publish, got %v", repo.published)
	}
}

func TestPrunePublishedUsesRetentionWindow(t *testing.T) {
	repo := &stubFetcher{pruned: 7}
	pub := newTestPublisher(t, repo, newStubBroker())

	deleted, err := pub.PrunePublished(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("expected 7 deleted, got %d", deleted)
	}
	wantCutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if diff := repo.pruneCutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff should reflect the default 30 day window, got %v", repo.pruneCutoff)
	}
}

func TestPublishBatchRespectsBatchSize(t *testing.T) {
	repo := &stubFetcher{}
	for i := 0; i < 15; i++ {
		repo.pending = append(repo.pending, pendingEvent(enums.EventBookingCreated))
	}
	pub := newTestPublisher(t, repo, newStubBroker())

	published, err := pub.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published != 10 {
		t.Fatalf("expected batch of 10, got %d", published)
	}
}
