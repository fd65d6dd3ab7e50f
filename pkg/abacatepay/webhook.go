package abacatepay

import "encoding/json"

// Webhook event names delivered by AbacatePay.
const (
	EventBillingPaid = "billing.paid"
)

// WebhookPayload is the envelope AbacatePay posts to the webhook endpoint.
// Unknown fields are ignored so provider-side additions do not break parsing.
type WebhookPayload struct {
	ID      string       `json:"id"`
	Event   string       `json:"event"`
	Data    *WebhookData `json:"data"`
	DevMode bool         `json:"devMode"`
}

type WebhookData struct {
	Billing *WebhookBilling `json:"billing"`
	Payment *WebhookPayment `json:"payment"`
}

type WebhookBilling struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	Products []WebhookProduct `json:"products"`
}

type WebhookProduct struct {
	ExternalID string `json:"externalId"`
}

type WebhookPayment struct {
	Amount int    `json:"amount"`
	Method string `json:"method"`
}

// ParseWebhookPayload decodes a webhook body. Malformed bodies return an
// error so callers can acknowledge and drop them.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExternalID returns the external id the charge was created with, preferring
// the product entry and falling back to nothing when absent.
func (p *WebhookPayload) ExternalID() string {
	if p == nil || p.Data == nil || p.Data.Billing == nil {
		return ""
	}
	for _, product := range p.Data.Billing.Products {
		if product.ExternalID != "" {
			return product.ExternalID
		}
	}
	return ""
}
