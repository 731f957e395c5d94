package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/outbox"
	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/platform/messaging/producers"
)

// OutboxPoller drains pending outbox messages to Kafka. Publishing is
// at-least-once: a message that fails after the configured attempts is
// parked as FAILED_TO_PUBLISH for operational replay.
type OutboxPoller struct {
	repo            outbox.Repository
	producer        producers.MessagePublisher
	pool            *ants.Pool
	pollingInterval time.Duration
	batchSize       int
	maxAttempts     int
	logger          *slog.Logger
}

// NewOutboxPoller creates the settlement event poller
func NewOutboxPoller(
	logger *slog.Logger,
	repo outbox.Repository,
	producer producers.MessagePublisher,
	pool *ants.Pool,
	cfg *config.OutboxConfig,
) *OutboxPoller {
	return &OutboxPoller{
		repo:            repo,
		producer:        producer,
		pool:            pool,
		pollingInterval: cfg.PollingInterval,
		batchSize:       cfg.BatchSize,
		maxAttempts:     cfg.MaxRetryAttempts,
		logger:          logger,
	}
}

// Start polls until the context is cancelled
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"polling_interval", p.pollingInterval.String(),
		"batch_size", p.batchSize,
	)

	ticker := time.NewTicker(p.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
			p.drainBatch(ctx)
		}
	}
}

func (p *OutboxPoller) drainBatch(ctx context.Context) {
	messages, err := p.repo.GetPending(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("Failed to fetch pending outbox messages", "error", err)
		return
	}

	for _, msg := range messages {
		msg := msg
		if err := p.pool.Submit(func() {
			p.publish(ctx, msg)
		}); err != nil {
			p.logger.Error("Failed to submit outbox message to worker pool",
				"message_id", msg.ID.String(),
				"error", err)
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, msg *outbox.Message) {
	if err := p.producer.Publish(ctx, msg.Reference, msg.Payload); err != nil {
		p.logger.Error("Failed to publish settlement event",
			"message_id", msg.ID.String(),
			"kind", msg.Kind,
			"attempts", msg.Attempts+1,
			"error", err)

		if msg.Attempts+1 >= p.maxAttempts {
			if err := p.repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
				p.logger.Error("Failed to park outbox message", "message_id", msg.ID.String(), "error", err)
			}
			return
		}
		if err := p.repo.IncrementAttempts(ctx, msg.ID); err != nil {
			p.logger.Error("Failed to increment outbox attempts", "message_id", msg.ID.String(), "error", err)
		}
		return
	}

	if err := p.repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to mark outbox message processed", "message_id", msg.ID.String(), "error", err)
	}
}
