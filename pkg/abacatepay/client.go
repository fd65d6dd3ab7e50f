// Package abacatepay integrates with the AbacatePay billing API to create
// PIX payment links. The provider exposes a plain REST surface and no Go SDK,
// so the client is a thin net/http wrapper with bearer auth.
package abacatepay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

const (
	billingCreatePath = "/billing/create"

	FrequencyOneTime = "ONE_TIME"
	MethodPIX        = "PIX"

	// minimum charge accepted by the provider, in cents.
	minPriceCents = 100
)

var errLoggerRequired = errors.New("abacatepay logger is required")

var digitsOnly = regexp.MustCompile(`\D`)

// Client calls the AbacatePay REST API. A client built from an empty API key
// is disabled: billing calls return nil results so callers fall back to
// placeholder payment links.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	webhookSecret string
	logger        *logger.Logger
}

// BillingParams describes one charge for a booking or subscription.
type BillingParams struct {
	ExternalID    string
	ProductName   string
	Description   string
	PriceCents    int
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	CustomerTaxID string
	ReturnURL     string
}

// BillingResult is the provider-side identity of a created charge.
type BillingResult struct {
	BillingID  string
	PaymentURL string
}

type billingRequest struct {
	Frequency     string           `json:"frequency"`
	Methods       []string         `json:"methods"`
	Products      []billingProduct `json:"products"`
	ReturnURL     string           `json:"returnUrl"`
	CompletionURL string           `json:"completionUrl"`
	Customer      billingCustomer  `json:"customer"`
	ExternalID    string           `json:"externalId"`
}

type billingProduct struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
}

type billingCustomer struct {
	Name      string `json:"name"`
	Cellphone string `json:"cellphone"`
	Email     string `json:"email"`
	TaxID     string `json:"taxId"`
}

type billingResponse struct {
	Data *struct {
		ID     string `json:"id"`
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"data"`
	Error any `json:"error"`
}

// NewClient validates configuration and builds the API wrapper.
func NewClient(cfg config.AbacatePayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		baseURL:       baseURL,
		apiKey:        strings.TrimSpace(cfg.APIKey),
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		logger:        logg,
	}, nil
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// WebhookSecret returns the shared secret expected on webhook deliveries.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreateBilling creates a one-time PIX charge. Returns nil without error when
// the integration is disabled so callers can issue a placeholder link instead.
func (c *Client) CreateBilling(ctx context.Context, params BillingParams) (*BillingResult, error) {
	if !c.Enabled() {
		c.logger.Warn(ctx, "abacatepay api key not configured, skipping billing creation")
		return nil, nil
	}
	if params.ExternalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing external id is required")
	}

	priceCents := params.PriceCents
	if priceCents < minPriceCents {
		priceCents = minPriceCents
	}

	req := billingRequest{
		Frequency:     FrequencyOneTime,
		Methods:       []string{MethodPIX},
		ReturnURL:     params.ReturnURL,
		CompletionURL: params.ReturnURL,
		ExternalID:    params.ExternalID,
		Products: []billingProduct{{
			ExternalID:  params.ExternalID,
			Name:        params.ProductName,
			Description: params.Description,
			Quantity:    1,
			Price:       priceCents,
		}},
		Customer: billingCustomer{
			Name:      fallback(params.CustomerName, "Cliente"),
			Cellphone: normalizeDigits(params.CustomerPhone),
			Email:     params.CustomerEmail,
			TaxID:     normalizeDigits(params.CustomerTaxID),
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal billing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+billingCreatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build billing request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "abacatepay billing request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading abacatepay response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "abacatepay billing creation rejected").WithDetails(map[string]any{
			"status": resp.StatusCode,
		})
	}

	var parsed billingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding abacatepay response")
	}
	if parsed.Data == nil || parsed.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "abacatepay response missing billing data")
	}

	ctx = c.logger.WithFields(ctx, map[string]any{"billing_id": parsed.Data.ID})
	c.logger.Info(ctx, "abacatepay billing created")
	return &BillingResult{BillingID: parsed.Data.ID, PaymentURL: parsed.Data.URL}, nil
}

func normalizeDigits(value string) string {
	cleaned := digitsOnly.ReplaceAllString(value, "")
	if cleaned == "" {
		return "00000000000"
	}
	return cleaned
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
