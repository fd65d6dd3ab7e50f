// Package billingwebhook processes AbacatePay payment notifications and
// routes them to the booking or subscription they settle.
package billingwebhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/internal/payments"
	"github.com/ajeitai/marketplace-backend/internal/subscriptions"
	"github.com/ajeitai/marketplace-backend/pkg/abacatepay"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

const (
	gatewayName = "abacatepay"
	dedupeTTL   = 72 * time.Hour
)

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookEventKey(provider, eventID string) string
}

type bookingConfirmer interface {
	ConfirmPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) error
}

type subscriptionConfirmer interface {
	ConfirmSubscriptionPayment(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID, billingID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles gateway webhook deliveries. Deliveries are deduplicated by
// event id before any state changes; the downstream services are additionally
// idempotent, so replays that slip through still settle at most once.
type Service struct {
	store         dedupeStore
	bookings      bookingConfirmer
	subscriptions subscriptionConfirmer
	tx            txRunner
	logg          *logger.Logger
}

// NewService builds the billing webhook service.
func NewService(store dedupeStore, bookingsSvc bookingConfirmer, subscriptionsSvc subscriptionConfirmer, tx txRunner, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	if bookingsSvc == nil {
		return nil, fmt.Errorf("bookings service required")
	}
	if subscriptionsSvc == nil {
		return nil, fmt.Errorf("subscriptions service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		store:         store,
		bookings:      bookingsSvc,
		subscriptions: subscriptionsSvc,
		tx:            tx,
		logg:          logg,
	}, nil
}

// HandleDelivery parses and processes one webhook body. Malformed payloads
// and events we do not care about are acknowledged without error so the
// gateway stops retrying them.
func (s *Service) HandleDelivery(ctx context.Context, body []byte) error {
	payload, err := abacatepay.ParseWebhookPayload(body)
	if err != nil {
		s.logg.Warn(ctx, "discarding malformed webhook payload")
		return nil
	}
	if payload.Event != abacatepay.EventBillingPaid {
		logCtx := s.logg.WithFields(ctx, map[string]any{"event": payload.Event})
		s.logg.Info(logCtx, "ignoring webhook event")
		return nil
	}

	if payload.ID != "" {
		key := s.store.WebhookEventKey(gatewayName, payload.ID)
		claimed, err := s.store.SetNX(ctx, key, "1", dedupeTTL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim webhook delivery")
		}
		if !claimed {
			logCtx := s.logg.WithFields(ctx, map[string]any{"event_id": payload.ID})
			s.logg.Info(logCtx, "duplicate webhook delivery ignored")
			return nil
		}
		if err := s.process(ctx, payload); err != nil {
			// Release the claim so the gateway's retry can land.
			if delErr := s.store.Del(ctx, key); delErr != nil {
				s.logg.Error(ctx, "releasing webhook dedupe key failed", delErr)
			}
			return err
		}
		return nil
	}
	return s.process(ctx, payload)
}

func (s *Service) process(ctx context.Context, payload *abacatepay.WebhookPayload) error {
	externalID := payload.ExternalID()
	if externalID == "" {
		s.logg.Warn(ctx, "webhook payload carries no external id")
		return nil
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"external_id": externalID})

	if bookingID, ok := payments.ParseBookingExternalID(externalID); ok {
		return s.bookings.ConfirmPaymentByBookingID(logCtx, bookingID)
	}
	if subscriptionID, ok := subscriptions.ParseSubscriptionExternalID(externalID); ok {
		var billingID string
		if payload.Data != nil && payload.Data.Billing != nil {
			billingID = payload.Data.Billing.ID
		}
		return s.tx.WithTx(logCtx, func(tx *gorm.DB) error {
			return s.subscriptions.ConfirmSubscriptionPayment(logCtx, tx, subscriptionID, billingID)
		})
	}

	s.logg.Warn(logCtx, "webhook external id matches no known charge")
	return nil
}
