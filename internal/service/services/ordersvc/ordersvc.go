package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/ihistoryrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/istudentrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/record"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// errUnchanged aborts a status mutation that would not change anything.
var errUnchanged = errors.New("status unchanged")

// Authorizer approves or declines a charge.
type Authorizer interface {
	Authorize(ctx context.Context, amount money.Amount) bool
}

// Notifier is told when an order becomes ready for pickup.
type Notifier interface {
	NotifyReady(ctx context.Context, studentID, orderID string)
}

// PointsAwarder credits loyalty points for a paid amount.
type PointsAwarder interface {
	AwardPoints(ctx context.Context, studentID string, amount money.Amount) int
}

type noopNotifier struct{}

func (noopNotifier) NotifyReady(context.Context, string, string) {}

// OrderService places orders and moves them through their states.
type OrderService struct {
	orderRepo   iorderrepo.IOrderRepository
	studentRepo istudentrepo.IStudentRepository
	historyRepo ihistoryrepo.IHistoryRepository
	ledger      PointsAwarder
	notifier    Notifier

	strictTransitions bool
	now               func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
// It panics when a required repository or the ledger is missing.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		notifier: noopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil || s.studentRepo == nil || s.historyRepo == nil || s.ledger == nil {
		panic("order service requires order, student and history repositories and a ledger")
	}

	return s
}

// WithOrderRepository sets the order repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

// WithStudentRepository sets the student repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStudentRepository(repo istudentrepo.IStudentRepository) option {
	return func(s *OrderService) {
		s.studentRepo = repo
	}
}

// WithHistoryRepository sets the order history repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHistoryRepository(repo ihistoryrepo.IHistoryRepository) option {
	return func(s *OrderService) {
		s.historyRepo = repo
	}
}

// WithLedger sets the loyalty ledger for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLedger(ledger PointsAwarder) option {
	return func(s *OrderService) {
		s.ledger = ledger
	}
}

// WithNotifier sets the ready notifier for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(notifier Notifier) option {
	return func(s *OrderService) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithStrictTransitions only allows moving an order to its next state.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStrictTransitions(strict bool) option {
	return func(s *OrderService) {
		s.strictTransitions = strict
	}
}

// WithClock sets the time source for order creation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// PlaceOrder charges the student for the cart and stores the order.
//
// The wallet discount and the payment authorization happen in one student
// mutation: a declined payment leaves the wallet untouched and stores no order.
// Unknown students pay the raw total and get no history entry.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	studentID string,
	cart []order.Line,
	payment Authorizer,
) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("student_id", studentID))

	if err := record.ValidateField("student id", studentID); err != nil {
		return order.Order{}, err
	}
	if len(cart) == 0 {
		return order.Order{}, fmt.Errorf("%w: empty cart", apperrors.ErrInvalidArgument)
	}
	for _, l := range cart {
		if l.Quantity <= 0 {
			return order.Order{}, fmt.Errorf("%w: quantity must be positive for %s", apperrors.ErrInvalidArgument, l.ItemID)
		}
		if l.UnitPrice.IsNegative() {
			return order.Order{}, fmt.Errorf("%w: negative price for %s", apperrors.ErrInvalidArgument, l.ItemID)
		}
	}

	o := order.New(studentID, cart, s.now())
	raw := o.Total
	final := raw
	known := true

	_, err := s.studentRepo.Apply(studentID, func(st student.Student) (student.Student, error) {
		updated, applied := st.ConsumeWallet(raw)
		final = raw.Sub(applied)
		if !payment.Authorize(ctx, final) {
			return st, apperrors.ErrPaymentDeclined
		}

		return updated, nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		known = false
		final = raw
		err = nil
		if !payment.Authorize(ctx, final) {
			err = apperrors.ErrPaymentDeclined
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Info("Order not placed", "student_id", studentID, "total", final.String(), "error", err)

		return order.Order{}, fmt.Errorf("failed to charge student %s: %w", studentID, err)
	}

	o.Total = final
	o.PointsEarned = s.ledger.AwardPoints(ctx, studentID, final)

	if err := s.orderRepo.Create(o); err != nil {
		return order.Order{}, fmt.Errorf("failed to store order: %w", err)
	}
	if known {
		if err := s.historyRepo.Append(studentID, o.ID); err != nil {
			slog.Error("Failed to append order to history", "student_id", studentID, "order_id", o.ID, "error", err)
		}
	}

	slog.Info("Order placed",
		"order_id", o.ID,
		"student_id", studentID,
		"raw_total", raw.String(),
		"total", o.Total.String(),
		"points", o.PointsEarned)

	return o, nil
}

// UpdateStatus moves the order to status. Unknown orders are ignored.
// The student is notified once when the order enters ReadyForPickup.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID), attribute.String("status", status.String()))

	var becameReady bool
	updated, err := s.orderRepo.Apply(orderID, func(o order.Order) (order.Order, error) {
		if o.Status == status {
			return o, errUnchanged
		}
		next, err := o.Transition(status, s.strictTransitions)
		if err != nil {
			return o, err
		}
		becameReady = next.Status == order.StatusReadyForPickup

		return next, nil
	})
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		slog.Warn("Status update for unknown order ignored", "order_id", orderID)

		return nil
	case errors.Is(err, errUnchanged):
		return nil
	case err != nil:
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}

	slog.Info("Order status updated", "order_id", orderID, "status", status.String())

	if becameReady {
		s.notifier.NotifyReady(ctx, updated.StudentID, updated.ID)
	}

	return nil
}

// Get returns the order with the given id.
func (s *OrderService) Get(ctx context.Context, orderID string) (order.Order, error) {
	_, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.Get")
	defer span.End()

	return s.orderRepo.Get(orderID)
}

// OrdersOf returns the student's orders, newest first.
func (s *OrderService) OrdersOf(ctx context.Context, studentID string) []order.Order {
	_, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.OrdersOf")
	defer span.End()

	orders := s.orderRepo.ByStudent(studentID)
	if orders == nil {
		return []order.Order{}
	}

	return orders
}

// ListByStatus returns the orders in status, oldest first.
func (s *OrderService) ListByStatus(ctx context.Context, status order.Status) []order.Order {
	_, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.ListByStatus")
	defer span.End()

	orders := s.orderRepo.ByStatus(status)
	if orders == nil {
		return []order.Order{}
	}

	return orders
}

// RemoveOrder deletes a collected order. Only orders ready for pickup can be removed.
func (s *OrderService) RemoveOrder(ctx context.Context, orderID string) error {
	_, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.RemoveOrder")
	defer span.End()

	err := s.orderRepo.DeleteIf(orderID, func(o order.Order) error {
		if !o.Status.Terminal() {
			return fmt.Errorf("%w: order %s is %s", apperrors.ErrIllegalTransition, orderID, o.Status)
		}

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Order removed", "order_id", orderID)

	return nil
}
