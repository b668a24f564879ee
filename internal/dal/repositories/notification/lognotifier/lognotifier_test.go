package lognotifier

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NotifyReady(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	n.NotifyReady(context.Background(), "2025001", "order-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Order ready for pickup", record["msg"])
	assert.Equal(t, "2025001", record["student_id"])
	assert.Equal(t, "order-1", record["order_id"])
}
