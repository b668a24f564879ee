package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/ioutboxrepo"
	outboxmodel "github.com/corray333/backend-labs/cafeteria/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Publisher sends a message to the broker.
type Publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker redelivers ready notifications that could not be published
// when the order became ready.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	publisher     Publisher
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// option is a function that configures the Worker.
type option func(*Worker)

// NewWorker creates an outbox worker configured from rabbitmq.outbox.*.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	publisher Publisher,
	opts ...option,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	w := &Worker{
		outboxRepo:    outboxRepo,
		publisher:     publisher,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WithPollInterval overrides how often the outbox is scanned.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPollInterval(d time.Duration) option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// Start delivers whatever is already due, then polls until ctx is done
// or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)
	w.ProcessMessages(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.ProcessMessages(ctx)
		}
	}
}

// Stop stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// ProcessMessages publishes one batch of due notifications and reports how
// many were delivered. Failures are rescheduled with exponential backoff;
// a message that used up its retries is dropped.
func (w *Worker) ProcessMessages(ctx context.Context) int {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending notifications from outbox", "error", err)

		return 0
	}
	if len(messages) == 0 {
		return 0
	}

	slog.Info("Redelivering ready notifications", "count", len(messages))

	delivered := 0
	for _, msg := range messages {
		if err := w.deliver(msg); err != nil {
			w.reschedule(ctx, msg, err)

			continue
		}

		delivered++
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to remove delivered notification from outbox", "outbox_id", msg.ID, "error", err)
		}
	}

	return delivered
}

func (w *Worker) deliver(msg outboxmodel.OutboxMessage) error {
	return w.publisher.Publish(msg.ExchangeName, msg.RoutingKey, amqp.Publishing{
		ContentType:  msg.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    w.now(),
		Body:         msg.Payload,
	})
}

func (w *Worker) reschedule(ctx context.Context, msg outboxmodel.OutboxMessage, cause error) {
	retryCount := msg.RetryCount + 1

	if retryCount >= msg.MaxRetries {
		slog.Error("Dropping ready notification after last retry",
			"outbox_id", msg.ID,
			"retry_count", retryCount,
			"error", cause,
		)
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to remove exhausted notification from outbox", "outbox_id", msg.ID, "error", err)
		}

		return
	}

	nextRetryAt := w.now().Add(outboxmodel.Backoff(w.retryInterval, retryCount))
	slog.Warn("Failed to redeliver ready notification, will retry",
		"outbox_id", msg.ID,
		"retry_count", retryCount,
		"next_retry", nextRetryAt,
		"error", cause,
	)

	if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, retryCount, cause.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
