package lognotifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/notification"
)

// Notifier writes ready notifications to the log.
type Notifier struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewNotifier creates a log notifier. A nil logger means slog.Default.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{logger: logger, now: time.Now}
}

func (n *Notifier) NotifyReady(ctx context.Context, studentID, orderID string) {
	event := notification.ReadyNotification{StudentID: studentID, OrderID: orderID, ReadyAt: n.now()}
	n.logger.InfoContext(ctx, "Order ready for pickup",
		"student_id", event.StudentID,
		"order_id", event.OrderID,
		"ready_at", event.ReadyAt)
}
