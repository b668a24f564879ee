package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/outbox"
)

// IOutboxRepository stores ready notifications waiting for redelivery.
type IOutboxRepository interface {
	// Insert stores a notification that could not be published.
	Insert(ctx context.Context, msg outbox.OutboxMessage) error

	// GetPendingMessages returns up to limit due messages, oldest due first.
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error)

	// Delete removes a delivered or abandoned message.
	Delete(ctx context.Context, id string) error

	// UpdateRetry records a failed attempt and the next due time.
	UpdateRetry(
		ctx context.Context,
		id string,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
