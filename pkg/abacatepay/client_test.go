package abacatepay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestCreateBillingDisabled(t *testing.T) {
	client, err := NewClient(config.AbacatePayConfig{}, newTestLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := client.CreateBilling(context.Background(), BillingParams{ExternalID: "ag-1"})
	if err != nil {
		t.Fatalf("disabled client should not fail: %v", err)
	}
	if result != nil {
		t.Fatalf("disabled client should return nil result")
	}
}

func TestCreateBilling(t *testing.T) {
	var captured billingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/billing/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "bill_123", "url": "https://pay.example/bill_123", "status": "PENDING"},
		})
	}))
	defer server.Close()

	client, err := NewClient(config.AbacatePayConfig{BaseURL: server.URL, APIKey: "test-key"}, newTestLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := client.CreateBilling(context.Background(), BillingParams{
		ExternalID:    "ag-7",
		ProductName:   "Atendimento - Limpeza Total",
		PriceCents:    50, // below provider minimum, must be raised
		CustomerName:  "",
		CustomerPhone: "(11) 99888-7766",
		CustomerTaxID: "123.456.789-00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BillingID != "bill_123" || result.PaymentURL != "https://pay.example/bill_123" {
		t.Fatalf("unexpected result %+v", result)
	}

	if captured.Frequency != FrequencyOneTime {
		t.Fatalf("expected one-time frequency, got %s", captured.Frequency)
	}
	if len(captured.Products) != 1 || captured.Products[0].Price != minPriceCents {
		t.Fatalf("price below minimum should be clamped, got %+v", captured.Products)
	}
	if captured.Customer.Name != "Cliente" {
		t.Fatalf("empty customer name should fall back, got %q", captured.Customer.Name)
	}
	if captured.Customer.Cellphone != "11998887766" {
		t.Fatalf("phone should be digits only, got %q", captured.Customer.Cellphone)
	}
	if captured.Customer.TaxID != "12345678900" {
		t.Fatalf("tax id should be digits only, got %q", captured.Customer.TaxID)
	}
}

func TestCreateBillingHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(config.AbacatePayConfig{BaseURL: server.URL, APIKey: "bad-key"}, newTestLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = client.CreateBilling(context.Background(), BillingParams{ExternalID: "ag-1", PriceCents: 10000})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestParseWebhookPayload(t *testing.T) {
	body := []byte(`{
		"id": "evt_1",
		"event": "billing.paid",
		"data": {
			"billing": {"id": "bill_9", "status": "PAID", "products": [{"externalId": "ag-42"}]},
			"payment": {"amount": 15000, "method": "PIX"}
		},
		"devMode": true
	}`)
	payload, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Event != EventBillingPaid {
		t.Fatalf("unexpected event %s", payload.Event)
	}
	if got := payload.ExternalID(); got != "ag-42" {
		t.Fatalf("unexpected external id %s", got)
	}

	if _, err := ParseWebhookPayload([]byte("not-json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
