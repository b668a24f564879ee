package flatfilerepo

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client := flatfile.MustNewClient(t.TempDir())
	repo := NewOutboxRepository(client)
	require.NoError(t, repo.Load())

	now := time.Now()
	require.NoError(t, repo.Insert(ctx, outbox.OutboxMessage{
		QueueName:   "order.ready",
		RoutingKey:  "order.ready",
		ContentType: "application/json",
		Payload:     []byte(`{"order_id":"a|b"}`),
		MaxRetries:  3,
		CreatedAt:   now,
		NextRetryAt: now.Add(-time.Second),
	}))
	require.NoError(t, repo.Insert(ctx, outbox.OutboxMessage{
		QueueName:   "order.ready",
		MaxRetries:  3,
		CreatedAt:   now,
		NextRetryAt: now.Add(time.Hour),
	}))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	msg := pending[0]
	assert.NotEmpty(t, msg.ID)

	require.NoError(t, repo.UpdateRetry(ctx, msg.ID, 1, "connection refused|closed", now.Add(-time.Millisecond)))

	reloaded := NewOutboxRepository(client)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 2, reloaded.Len())

	pending, err = reloaded.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, msg.ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "connection refused|closed", pending[0].LastError)
	assert.Equal(t, `{"order_id":"a|b"}`, string(pending[0].Payload))

	require.NoError(t, reloaded.Delete(ctx, msg.ID))
	assert.Equal(t, 1, reloaded.Len())
}

func TestOutboxRepository_ExhaustedMessagesAreNotPending(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository(flatfile.MustNewClient(t.TempDir()))
	require.NoError(t, repo.Load())

	require.NoError(t, repo.Insert(ctx, outbox.OutboxMessage{
		ID:          "m1",
		RetryCount:  3,
		MaxRetries:  3,
		NextRetryAt: time.Now().Add(-time.Hour),
	}))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
