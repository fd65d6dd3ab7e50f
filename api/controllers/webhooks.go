package controllers

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/ajeitai/marketplace-backend/api/responses"
	billingwebhook "github.com/ajeitai/marketplace-backend/internal/webhooks/billing"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

const webhookMaxBodySize = 1 << 20

// AbacatePayWebhook receives billing events from the payment gateway. The
// shared secret travels as a query parameter per the gateway's contract.
func AbacatePayWebhook(svc *billingwebhook.Service, secret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret not configured"))
			return
		}

		provided := r.URL.Query().Get("webhookSecret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook secret"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBodySize))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read webhook body"))
			return
		}

		if err := svc.HandleDelivery(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
