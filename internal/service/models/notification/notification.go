package notification

import "time"

// ReadyNotification tells a student that an order can be collected.
type ReadyNotification struct {
	StudentID string    `json:"student_id"`
	OrderID   string    `json:"order_id"`
	ReadyAt   time.Time `json:"ready_at"`
}
