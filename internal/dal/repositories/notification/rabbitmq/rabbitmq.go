package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/notification"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
)

const contentType = "application/json"

// Publisher sends a message to the broker.
type Publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Notifier publishes ready notifications to a queue. Messages that cannot
// be published are stored in the outbox for the outbox worker to retry.
type Notifier struct {
	publisher  Publisher
	outboxRepo ioutboxrepo.IOutboxRepository
	queue      string
	maxRetries int
	retryAfter time.Duration
	now        func() time.Time
}

// option is a function that configures the Notifier.
type option func(*Notifier)

// NewNotifier creates a notifier publishing to queue.
func NewNotifier(publisher Publisher, queue string, opts ...option) *Notifier {
	n := &Notifier{
		publisher:  publisher,
		queue:      queue,
		maxRetries: 5,
		retryAfter: 30 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// WithOutbox stores failed publishes in the outbox.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutbox(repo ioutboxrepo.IOutboxRepository, maxRetries int, retryAfter time.Duration) option {
	return func(n *Notifier) {
		n.outboxRepo = repo
		if maxRetries > 0 {
			n.maxRetries = maxRetries
		}
		if retryAfter > 0 {
			n.retryAfter = retryAfter
		}
	}
}

// NotifyReady publishes {student_id, order_id, ready_at}. It never fails the caller.
func (n *Notifier) NotifyReady(ctx context.Context, studentID, orderID string) {
	ctx, span := otel.Tracer("notifier").Start(ctx, "Notifier.NotifyReady")
	defer span.End()

	now := n.now()
	body, err := json.Marshal(notification.ReadyNotification{
		StudentID: studentID,
		OrderID:   orderID,
		ReadyAt:   now.UTC(),
	})
	if err != nil {
		slog.Error("Failed to encode ready notification", "order_id", orderID, "error", err)

		return
	}

	err = n.publisher.Publish("", n.queue, amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	})
	if err == nil {
		slog.Info("Ready notification published", "order_id", orderID, "student_id", studentID)

		return
	}

	slog.Warn("Failed to publish ready notification", "order_id", orderID, "error", err)
	if n.outboxRepo == nil {
		return
	}

	msg := outbox.OutboxMessage{
		QueueName:   n.queue,
		RoutingKey:  n.queue,
		Payload:     body,
		ContentType: contentType,
		MaxRetries:  n.maxRetries,
		LastError:   err.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now.Add(n.retryAfter),
	}
	if err := n.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to store ready notification in outbox", "order_id", orderID, "error", err)

		return
	}

	slog.Info("Ready notification stored in outbox", "order_id", orderID)
}
