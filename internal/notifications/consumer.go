package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/metrics"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
	"github.com/ajeitai/marketplace-backend/pkg/outbox/idempotency"
	"github.com/ajeitai/marketplace-backend/pkg/rabbitmq"
)

const consumerName = "notifications"

type republisher interface {
	Publish(ctx context.Context, queue, messageID string, body []byte) error
}

type queueConsumer interface {
	Consume(ctx context.Context, queue, consumerTag string, handler rabbitmq.Handler) error
}

// eventData is the union of the payload fields notification routing needs.
type eventData struct {
	BookingID  *uuid.UUID `json:"booking_id"`
	ClientID   *uuid.UUID `json:"client_id"`
	ProviderID *uuid.UUID `json:"provider_id"`
	PaymentURL *string    `json:"payment_url"`
	NetAmount  string     `json:"net_amount"`
	Amount     string     `json:"amount"`
}

// outboundMessage is the compact shape pushed to the notification queue for
// delivery channels (push, e-mail) downstream of this service.
type outboundMessage struct {
	NotificationID string `json:"notification_id"`
	RecipientRole  string `json:"recipient_role"`
	RecipientID    string `json:"recipient_id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Link           string `json:"link,omitempty"`
}

// Consumer turns domain events into persisted notifications and compact
// queue messages for delivery channels.
type Consumer struct {
	repo        Repository
	broker      republisher
	queue       queueConsumer
	eventsQueue string
	outQueue    string
	idempotency *idempotency.Manager
	logg        *logger.Logger
	metrics     *metrics.WorkerMetrics
}

// WithMetrics attaches worker metrics. Without it the consumer runs
// unobserved.
func (c *Consumer) WithMetrics(m *metrics.WorkerMetrics) *Consumer {
	c.metrics = m
	return c
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo Repository, queue queueConsumer, broker republisher, eventsQueue, outQueue string, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue consumer required")
	}
	if broker == nil {
		return nil, fmt.Errorf("broker required")
	}
	if eventsQueue == "" || outQueue == "" {
		return nil, fmt.Errorf("queue names required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:        repo,
		broker:      broker,
		queue:       queue,
		eventsQueue: eventsQueue,
		outQueue:    outQueue,
		idempotency: manager,
		logg:        logg,
	}, nil
}

// Run consumes the events queue until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.queue.Consume(ctx, c.eventsQueue, consumerName, c.HandleDelivery)
}

// HandleDelivery processes one domain event delivery.
func (c *Consumer) HandleDelivery(ctx context.Context, d rabbitmq.Delivery) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(d.Body, &envelope); err != nil {
		c.logg.Warn(ctx, "discarding malformed event payload")
		return nil
	}
	eventID := envelope.EventID
	if eventID == "" {
		eventID = d.MessageID
	}
	if eventID == "" {
		c.logg.Warn(ctx, "discarding event without id")
		return nil
	}

	seen, err := c.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	if err := c.process(ctx, eventID, envelope); err != nil {
		c.metrics.IncFailure(consumerName)
		if delErr := c.idempotency.Delete(ctx, consumerName, eventID); delErr != nil {
			c.logg.Error(ctx, "releasing idempotency claim failed", delErr)
		}
		return err
	}
	c.metrics.IncSuccess(consumerName)
	return nil
}

func (c *Consumer) process(ctx context.Context, eventID string, envelope outbox.PayloadEnvelope) error {
	var data eventData
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			c.logg.Warn(ctx, "discarding event with malformed data")
			return nil
		}
	}

	notification := buildNotification(envelope.EventType, data)
	if notification == nil {
		return nil
	}
	notification.EventID = eventID

	if err := c.repo.Create(ctx, notification); err != nil {
		// The unique index on event_id absorbs replays that raced past the
		// redis claim.
		if isDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("persisting notification: %w", err)
	}

	message := outboundMessage{
		NotificationID: notification.ID.String(),
		RecipientRole:  string(notification.RecipientRole),
		RecipientID:    notification.RecipientID.String(),
		Kind:           notification.Kind,
		Title:          notification.Title,
		Message:        notification.Message,
	}
	if notification.Link != nil {
		message.Link = *notification.Link
	}
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := c.broker.Publish(ctx, c.outQueue, eventID, body); err != nil {
		// The row is saved; delivery to push channels is best effort.
		c.logg.Error(ctx, "publishing notification message failed", err)
	}
	return nil
}

// buildNotification maps an event to the person who should hear about it.
// Events that carry no user-facing meaning return nil.
func buildNotification(eventType enums.OutboxEventType, data eventData) *models.Notification {
	switch eventType {
	case enums.EventBookingCreated:
		return providerNotification(data, "booking_created",
			"Novo agendamento", "Voce recebeu uma nova solicitacao de agendamento.")
	case enums.EventBookingAccepted:
		return clientNotification(data, "booking_accepted",
			"Agendamento aceito", "O prestador aceitou seu agendamento.")
	case enums.EventPaymentLinkAvailable:
		notification := clientNotification(data, "payment_link",
			"Pagamento disponivel", "O link de pagamento do seu agendamento esta disponivel.")
		if notification != nil {
			notification.Link = data.PaymentURL
		}
		return notification
	case enums.EventBookingRefused:
		return clientNotification(data, "booking_refused",
			"Agendamento recusado", "O prestador recusou seu agendamento.")
	case enums.EventBookingCanceled:
		return providerNotification(data, "booking_canceled",
			"Agendamento cancelado", "Um agendamento foi cancelado.")
	case enums.EventBookingConfirmed:
		return providerNotification(data, "booking_confirmed",
			"Agendamento confirmado", "O pagamento do agendamento foi confirmado.")
	case enums.EventBookingCompleted:
		return clientNotification(data, "booking_completed",
			"Atendimento concluido", "Seu atendimento foi concluido pelo prestador.")
	case enums.EventWalletCredited:
		message := "Voce recebeu um credito na sua carteira."
		if data.NetAmount != "" {
			message = "Voce recebeu R$ " + data.NetAmount + " na sua carteira."
		}
		return providerNotification(data, "wallet_credited", "Credito recebido", message)
	case enums.EventWithdrawalRequested:
		message := "Seu saque foi solicitado."
		if data.Amount != "" {
			message = "Seu saque de R$ " + data.Amount + " foi solicitado."
		}
		return providerNotification(data, "withdrawal_requested", "Saque solicitado", message)
	case enums.EventSubscriptionActivated:
		return providerNotification(data, "subscription_activated",
			"Assinatura ativa", "Sua assinatura da plataforma esta ativa.")
	default:
		return nil
	}
}

func clientNotification(data eventData, kind, title, message string) *models.Notification {
	if data.ClientID == nil {
		return nil
	}
	return &models.Notification{
		ID:            uuid.New(),
		RecipientRole: enums.ActorRoleClient,
		RecipientID:   *data.ClientID,
		Kind:          kind,
		Title:         title,
		Message:       message,
	}
}

func providerNotification(data eventData, kind, title, message string) *models.Notification {
	if data.ProviderID == nil {
		return nil
	}
	return &models.Notification{
		ID:            uuid.New(),
		RecipientRole: enums.ActorRoleProvider,
		RecipientID:   *data.ProviderID,
		Kind:          kind,
		Title:         title,
		Message:       message,
	}
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
