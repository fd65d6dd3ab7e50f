package idempotency

import (
	"context"
	"testing"
	"time"
)

func TestCheckAndMarkProcessed(t *testing.T) {
	store := newStubStore()
	mgr, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	seen, err := mgr.CheckAndMarkProcessed(ctx, "notifications", "evt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("first delivery should not be marked as seen")
	}

	seen, err = mgr.CheckAndMarkProcessed(ctx, "notifications", "evt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("redelivery should be reported as already processed")
	}

	// A different consumer tracks the same event independently.
	seen, err = mgr.CheckAndMarkProcessed(ctx, "audit", "evt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("other consumers should not share processed markers")
	}
}

func TestDeleteAllowsReprocessing(t *testing.T) {
	store := newStubStore()
	mgr, err := NewManager(store, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := mgr.CheckAndMarkProcessed(ctx, "notifications", "evt-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.Delete(ctx, "notifications", "evt-2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	seen, err := mgr.CheckAndMarkProcessed(ctx, "notifications", "evt-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("deleted marker should allow reprocessing")
	}
}

func TestNewManagerRequiresStore(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

type stubStore struct {
	data map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]string)}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = "1"
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "aj:idempotency:" + scope + ":" + id
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
