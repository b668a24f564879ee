package outbox

import (
	"math"
	"time"
)

// OutboxMessage represents a message that failed to be published to RabbitMQ.
type OutboxMessage struct {
	ID           string
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// Pending reports whether the message is due for another delivery attempt.
func (m OutboxMessage) Pending(now time.Time) bool {
	return m.RetryCount < m.MaxRetries && !m.NextRetryAt.After(now)
}

// Backoff returns the delay before retry number retryCount: 30s, 60s, 120s, ...
func Backoff(base time.Duration, retryCount int) time.Duration {
	return time.Duration(math.Pow(2, float64(retryCount-1))) * base
}
