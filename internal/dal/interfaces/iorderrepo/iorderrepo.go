package iorderrepo

import (
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
)

// IOrderRepository is an interface for the order table.
type IOrderRepository interface {
	Get(id string) (order.Order, error)
	Create(o order.Order) error
	DeleteIf(id string, check func(order.Order) error) error
	Apply(id string, mutate func(order.Order) (order.Order, error)) (order.Order, error)

	// ByStudent returns the student's orders, newest first.
	ByStudent(studentID string) []order.Order
	// ByStatus returns the orders in the status, oldest first.
	ByStatus(status order.Status) []order.Order
}
