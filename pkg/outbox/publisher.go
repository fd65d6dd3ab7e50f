package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/metrics"
)

const (
	publishTask   = "outbox-publish"
	retentionTask = "outbox-retention"

	retentionSweepInterval = time.Hour
)

type fetcher interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error) error
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

type broker interface {
	Publish(ctx context.Context, queue, messageID string, body []byte) error
}

// Publisher drains unpublished outbox rows to the broker. Rows keep their
// insertion order within a batch; a row that keeps failing is retried until
// it exhausts the configured attempt budget and then left for inspection.
type Publisher struct {
	repo    fetcher
	brk     broker
	queue   string
	cfg     config.OutboxConfig
	logg    *logger.Logger
	metrics *metrics.WorkerMetrics
}

// WithMetrics attaches worker metrics. Without it the publisher runs
// unobserved.
func (p *Publisher) WithMetrics(m *metrics.WorkerMetrics) *Publisher {
	p.metrics = m
	return p
}

// NewPublisher builds the outbox publisher worker.
func NewPublisher(repo fetcher, brk broker, queue string, cfg config.OutboxConfig, logg *logger.Logger) (*Publisher, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if brk == nil {
		return nil, fmt.Errorf("broker required")
	}
	if queue == "" {
		return nil, fmt.Errorf("queue name required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 500
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	return &Publisher{repo: repo, brk: brk, queue: queue, cfg: cfg, logg: logg}, nil
}

// Run polls until the context is canceled. Published rows older than the
// retention window are pruned on a slower cadence from the same loop.
func (p *Publisher) Run(ctx context.Context) error {
	interval := time.Duration(p.cfg.PollIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sweep := time.NewTicker(retentionSweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.logg.Error(ctx, "outbox batch failed", err)
			}
		case <-sweep.C:
			if _, err := p.PrunePublished(ctx); err != nil {
				p.logg.Error(ctx, "outbox retention sweep failed", err)
			}
		}
	}
}

// PrunePublished removes published rows older than the retention window.
func (p *Publisher) PrunePublished(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveDuration(retentionTask, time.Since(start))
	}()

	cutoff := time.Now().UTC().Add(-time.Duration(p.cfg.RetentionDays) * 24 * time.Hour)
	deleted, err := p.repo.DeletePublishedBefore(cutoff)
	if err != nil {
		p.metrics.IncFailure(retentionTask)
		return 0, fmt.Errorf("pruning outbox events: %w", err)
	}
	p.metrics.IncSuccess(retentionTask)
	if deleted > 0 {
		p.logg.Info(p.logg.WithField(ctx, "deleted", deleted), "pruned published outbox events")
	}
	return deleted, nil
}

// PublishBatch ships one batch of pending events and reports how many were
// published.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveDuration(publishTask, time.Since(start))
	}()

	events, err := p.repo.FetchUnpublished(p.cfg.BatchSize, p.cfg.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("fetching outbox events: %w", err)
	}

	published := 0
	for _, event := range events {
		if err := p.brk.Publish(ctx, p.queue, event.ID.String(), event.Payload); err != nil {
			p.metrics.IncFailure(publishTask)
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"event_id":   event.ID.String(),
				"event_type": string(event.EventType),
			})
			p.logg.Error(logCtx, "publishing outbox event failed", err)
			if markErr := p.repo.MarkFailed(event.ID, err); markErr != nil {
				p.logg.Error(logCtx, "marking outbox event failed", markErr)
			}
			continue
		}
		if err := p.repo.MarkPublished(event.ID); err != nil {
			// The broker got the message; the consumer's dedupe absorbs the
			// redelivery that follows this miss.
			p.logg.Error(ctx, "marking outbox event published failed", err)
			continue
		}
		p.metrics.IncSuccess(publishTask)
		published++
	}
	return published, nil
}
