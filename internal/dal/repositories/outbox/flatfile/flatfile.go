package flatfilerepo

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/table"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/outbox"
	"github.com/google/uuid"
)

// FileName is the outbox table file.
const FileName = "outbox.txt"

// OutboxCodec encodes messages as
// id|queue|routingKey|contentType|retry|maxRetries|nextRetryUnix|createdUnix|lastError|payload
// with the last two fields base64 encoded.
type OutboxCodec struct{}

func (OutboxCodec) Key(m outbox.OutboxMessage) string { return m.ID }

func (OutboxCodec) Encode(m outbox.OutboxMessage) string {
	return strings.Join([]string{
		m.ID,
		m.QueueName,
		m.RoutingKey,
		m.ContentType,
		strconv.Itoa(m.RetryCount),
		strconv.Itoa(m.MaxRetries),
		strconv.FormatInt(m.NextRetryAt.Unix(), 10),
		strconv.FormatInt(m.CreatedAt.Unix(), 10),
		base64.StdEncoding.EncodeToString([]byte(m.LastError)),
		base64.StdEncoding.EncodeToString(m.Payload),
	}, "|")
}

func (OutboxCodec) Decode(record string) (outbox.OutboxMessage, error) {
	p := strings.Split(record, "|")
	if len(p) != 10 {
		return outbox.OutboxMessage{}, fmt.Errorf("outbox record has %d fields, want 10", len(p))
	}

	ints := make([]int64, 4)
	for i, s := range p[4:8] {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return outbox.OutboxMessage{}, fmt.Errorf("invalid numeric field %q: %w", s, err)
		}
		ints[i] = v
	}

	lastError, err := base64.StdEncoding.DecodeString(p[8])
	if err != nil {
		return outbox.OutboxMessage{}, fmt.Errorf("invalid last error: %w", err)
	}
	payload, err := base64.StdEncoding.DecodeString(p[9])
	if err != nil {
		return outbox.OutboxMessage{}, fmt.Errorf("invalid payload: %w", err)
	}

	createdAt := time.Unix(ints[3], 0)

	return outbox.OutboxMessage{
		ID:          p[0],
		QueueName:   p[1],
		RoutingKey:  p[2],
		ContentType: p[3],
		RetryCount:  int(ints[0]),
		MaxRetries:  int(ints[1]),
		NextRetryAt: time.Unix(ints[2], 0),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		LastError:   string(lastError),
		Payload:     payload,
	}, nil
}

// OutboxRepository implements the outbox repository on a flat table file.
type OutboxRepository struct {
	table *table.Table[string, outbox.OutboxMessage]
}

// NewOutboxRepository creates a new outbox repository; call Load before use.
func NewOutboxRepository(client *flatfile.Client) *OutboxRepository {
	return &OutboxRepository{
		table: table.New[string, outbox.OutboxMessage]("outbox", client.Store(FileName), OutboxCodec{}),
	}
}

// Load reads the stored messages.
func (r *OutboxRepository) Load() error {
	return r.table.Load()
}

// Insert adds a new message to the outbox. An empty id is generated.
func (r *OutboxRepository) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if err := r.table.Create(msg); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

// GetPendingMessages retrieves messages that are ready for retry, earliest first.
func (r *OutboxRepository) GetPendingMessages(
	_ context.Context,
	limit int,
) ([]outbox.OutboxMessage, error) {
	now := time.Now()
	messages := r.table.Find(func(m outbox.OutboxMessage) bool { return m.Pending(now) })
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].NextRetryAt.Before(messages[j].NextRetryAt)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}

	return messages, nil
}

// Delete removes a message from the outbox after successful delivery.
func (r *OutboxRepository) Delete(_ context.Context, id string) error {
	if err := r.table.Delete(id); err != nil {
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}

	return nil
}

// UpdateRetry updates retry count and error information.
func (r *OutboxRepository) UpdateRetry(
	_ context.Context,
	id string,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	_, err := r.table.Apply(id, func(m outbox.OutboxMessage) (outbox.OutboxMessage, error) {
		m.RetryCount = retryCount
		m.LastError = lastError
		m.NextRetryAt = nextRetryAt
		m.UpdatedAt = time.Now()

		return m, nil
	})
	if err != nil {
		return fmt.Errorf("failed to update outbox message: %w", err)
	}

	return nil
}

// Len returns the number of stored messages, delivered or not.
func (r *OutboxRepository) Len() int {
	return r.table.Len()
}
