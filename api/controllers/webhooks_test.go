package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	billingwebhook "github.com/ajeitai/marketplace-backend/internal/webhooks/billing"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

type testDedupeStore struct{}

func (s *testDedupeStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}

func (s *testDedupeStore) Del(context.Context, ...string) error { return nil }

func (s *testDedupeStore) WebhookEventKey(provider, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", provider, eventID)
}

type testBookingConfirmer struct {
	confirmed []uuid.UUID
}

func (c *testBookingConfirmer) ConfirmPaymentByBookingID(_ context.Context, bookingID uuid.UUID) error {
	c.confirmed = append(c.confirmed, bookingID)
	return nil
}

type testSubscriptionConfirmer struct{}

func (c *testSubscriptionConfirmer) ConfirmSubscriptionPayment(context.Context, *gorm.DB, uuid.UUID, string) error {
	return nil
}

type testTxRunner struct{}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newWebhookService(t *testing.T, bookings *testBookingConfirmer) *billingwebhook.Service {
	t.Helper()
	svc, err := billingwebhook.NewService(&testDedupeStore{}, bookings, &testSubscriptionConfirmer{}, &testTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func paidWebhookBody(externalID string) string {
	return fmt.Sprintf(`{"id":"evt_1","event":"billing.paid","data":{"billing":{"id":"bill_1","status":"PAID","products":[{"externalId":%q}]}}}`, externalID)
}

func TestAbacatePayWebhookRejectsBadSecret(t *testing.T) {
	bookings := &testBookingConfirmer{}
	handler := AbacatePayWebhook(newWebhookService(t, bookings), "topsecret", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/abacatepay?webhookSecret=wrong", strings.NewReader("{}"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(bookings.confirmed) != 0 {
		t.Fatal("expected no settlement on rejected delivery")
	}
}

func TestAbacatePayWebhookSettlesBookingPayment(t *testing.T) {
	bookings := &testBookingConfirmer{}
	handler := AbacatePayWebhook(newWebhookService(t, bookings), "topsecret", testLogger())

	bookingID := uuid.New()
	body := paidWebhookBody("ag-" + bookingID.String())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/abacatepay?webhookSecret=topsecret", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(bookings.confirmed) != 1 || bookings.confirmed[0] != bookingID {
		t.Fatalf("expected booking %s settled, got %v", bookingID, bookings.confirmed)
	}
}

func TestAbacatePayWebhookAcksMalformedBody(t *testing.T) {
	bookings := &testBookingConfirmer{}
	handler := AbacatePayWebhook(newWebhookService(t, bookings), "topsecret", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/abacatepay?webhookSecret=topsecret", strings.NewReader("not json"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed body, got %d", resp.Code)
	}
	if len(bookings.confirmed) != 0 {
		t.Fatal("expected no settlement for malformed body")
	}
}

func TestAbacatePayWebhookFailsWithoutConfiguredSecret(t *testing.T) {
	handler := AbacatePayWebhook(newWebhookService(t, &testBookingConfirmer{}), "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/abacatepay", strings.NewReader("{}"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
