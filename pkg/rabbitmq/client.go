// Package rabbitmq wraps the AMQP broker connection used for domain events
// and notification fan-out.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

// Client holds a broker connection and a publishing channel.
type Client struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *logger.Logger
}

// Delivery is the subset of an AMQP delivery handed to consumer handlers.
type Delivery struct {
	MessageID string
	Body      []byte
}

// Handler processes a single delivery. A non-nil error rejects the message
// without requeueing so poison messages cannot loop forever.
type Handler func(ctx context.Context, d Delivery) error

// New dials the broker and declares the durable queues the platform uses.
func New(cfg config.RabbitMQConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	for _, queue := range []string{cfg.EventsQueue, cfg.NotificationQueue} {
		if queue == "" {
			continue
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}
	return &Client{conn: conn, ch: ch, logger: logg}, nil
}

// Publish sends a persistent JSON message to the given queue through the
// default exchange.
func (c *Client) Publish(ctx context.Context, queue, messageID string, body []byte) error {
	if c == nil || c.ch == nil {
		return errors.New("rabbitmq client not initialized")
	}
	if queue == "" {
		return errors.New("queue name is required")
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := c.ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Consume drains the queue on a dedicated channel until the context is
// cancelled or the broker closes the stream. Handler errors reject the
// delivery without requeueing.
func (c *Client) Consume(ctx context.Context, queue, consumerTag string, handler Handler) error {
	if c == nil || c.conn == nil {
		return errors.New("rabbitmq client not initialized")
	}
	if queue == "" || handler == nil {
		return errors.New("queue and handler are required")
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logWarn(ctx, queue, "setting channel qos failed", err)
	}
	msgs, err := ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handler(ctx, Delivery{MessageID: d.MessageId, Body: d.Body}); err != nil {
				c.logWarn(ctx, queue, "handling delivery failed", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) logWarn(ctx context.Context, queue, msg string, err error) {
	if c.logger == nil {
		return
	}
	ctx = c.logger.WithFields(ctx, map[string]any{"queue": queue, "error": err.Error()})
	c.logger.Warn(ctx, msg)
}
