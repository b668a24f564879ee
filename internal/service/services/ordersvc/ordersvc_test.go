package ordersvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	historyrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/history/flatfile"
	orderrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/order/flatfile"
	studentrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/student/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"github.com/corray333/backend-labs/cafeteria/internal/service/payment"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/loyaltysvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readyEvent struct {
	StudentID string
	OrderID   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []readyEvent
}

func (n *recordingNotifier) NotifyReady(_ context.Context, studentID, orderID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, readyEvent{StudentID: studentID, OrderID: orderID})
}

func (n *recordingNotifier) Events() []readyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]readyEvent(nil), n.events...)
}

type recordingAuthorizer struct {
	approve bool
	charged []money.Amount
}

func (a *recordingAuthorizer) Authorize(_ context.Context, amount money.Amount) bool {
	a.charged = append(a.charged, amount)

	return a.approve
}

type fixture struct {
	dir      string
	svc      *OrderService
	students *studentrepo.StudentRepository
	orders   *orderrepo.OrderRepository
	history  *historyrepo.HistoryRepository
	ledger   *loyaltysvc.Ledger
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()

	dir := t.TempDir()
	client := flatfile.MustNewClient(dir)

	f := &fixture{
		dir:      dir,
		students: studentrepo.NewStudentRepository(client),
		orders:   orderrepo.NewOrderRepository(client),
		history:  historyrepo.NewHistoryRepository(client),
		notifier: &recordingNotifier{},
	}
	require.NoError(t, f.students.Load())
	require.NoError(t, f.orders.Load())
	require.NoError(t, f.history.Load())

	f.ledger = loyaltysvc.MustNewLedger(
		loyaltysvc.WithStudentRepository(f.students),
		loyaltysvc.WithCalculator(loyaltysvc.NewBasicCalculator(10)),
	)

	base := []option{
		WithOrderRepository(f.orders),
		WithStudentRepository(f.students),
		WithHistoryRepository(f.history),
		WithLedger(f.ledger),
		WithNotifier(f.notifier),
	}
	f.svc = MustNewOrderService(append(base, opts...)...)

	return f
}

func (f *fixture) addStudent(t *testing.T, id string, points int, wallet money.Amount) {
	t.Helper()

	s, err := student.Restore(id, "Student "+id, "hash", points, wallet)
	require.NoError(t, err)
	require.NoError(t, f.students.Create(s))
}

func cart(prices ...int64) []order.Line {
	lines := make([]order.Line, 0, len(prices))
	for i, cents := range prices {
		lines = append(lines, order.Line{
			ItemID:    string(rune('A' + i)),
			ItemName:  "Item",
			UnitPrice: money.FromCents(cents),
			Quantity:  1,
		})
	}

	return lines
}

func TestPlaceOrder_AppliesPartialWallet(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.FromCents(2000))
	pay := &recordingAuthorizer{approve: true}

	o, err := f.svc.PlaceOrder(context.Background(), "2025001", cart(4000, 2000), pay)
	require.NoError(t, err)

	assert.Equal(t, "40.00", o.Total.String())
	assert.Equal(t, 4, o.PointsEarned)
	require.Len(t, pay.charged, 1)
	assert.Equal(t, "40.00", pay.charged[0].String())

	s, err := f.students.Get("2025001")
	require.NoError(t, err)
	assert.True(t, s.Wallet.IsZero())
	assert.Equal(t, 4, s.Points)
}

func TestPlaceOrder_WalletCoversTotal(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.FromCents(10000))
	pay := &recordingAuthorizer{approve: true}

	o, err := f.svc.PlaceOrder(context.Background(), "2025001", cart(4000, 2000), pay)
	require.NoError(t, err)

	assert.True(t, o.Total.IsZero())
	assert.Zero(t, o.PointsEarned)
	assert.True(t, pay.charged[0].IsZero())

	s, err := f.students.Get("2025001")
	require.NoError(t, err)
	assert.Equal(t, "40.00", s.Wallet.String())
	assert.Zero(t, s.Points)
}

func TestPlaceOrder_DeclinedPaymentChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 5, money.FromCents(2000))

	_, err := f.svc.PlaceOrder(context.Background(), "2025001", cart(4000, 2000), payment.Decline{})
	require.ErrorIs(t, err, apperrors.ErrPaymentDeclined)

	reloaded := studentrepo.NewStudentRepository(flatfile.MustNewClient(f.dir))
	require.NoError(t, reloaded.Load())
	s, err := reloaded.Get("2025001")
	require.NoError(t, err)
	assert.Equal(t, "20.00", s.Wallet.String())
	assert.Equal(t, 5, s.Points)

	assert.Empty(t, f.svc.OrdersOf(context.Background(), "2025001"))
	assert.Empty(t, f.history.OrderIDs("2025001"))
}

func TestPlaceOrder_UnknownStudent(t *testing.T) {
	f := newFixture(t)
	pay := &recordingAuthorizer{approve: true}

	o, err := f.svc.PlaceOrder(context.Background(), "ghost", cart(4000, 2000), pay)
	require.NoError(t, err)

	assert.Equal(t, "60.00", o.Total.String())
	assert.Equal(t, 6, o.PointsEarned)
	assert.Equal(t, "60.00", pay.charged[0].String())
	assert.False(t, f.students.Exists("ghost"))
	assert.Empty(t, f.history.OrderIDs("ghost"))

	_, err = f.svc.PlaceOrder(context.Background(), "ghost", cart(1000), payment.Decline{})
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

func TestPlaceOrder_RejectsStudentIDWithSeparators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pay := &recordingAuthorizer{approve: true}

	for _, id := range []string{"", "a|b", "a;b", "ghost\nforged|victim|READY_FOR_PICKUP|0.00|999", "cr\r"} {
		_, err := f.svc.PlaceOrder(ctx, id, cart(1000), pay)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, "student id %q", id)
	}
	assert.Empty(t, pay.charged)
	assert.Empty(t, f.orders.All())

	o, err := f.svc.PlaceOrder(ctx, "walk-in", cart(1000), pay)
	require.NoError(t, err)

	reloaded := orderrepo.NewOrderRepository(flatfile.MustNewClient(f.dir))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.Len())
	assert.True(t, reloaded.Exists(o.ID))
}

func TestPlaceOrder_InvalidCart(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.Zero)

	_, err := f.svc.PlaceOrder(context.Background(), "2025001", nil, payment.Cash{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	bad := cart(1000)
	bad[0].Quantity = 0
	_, err = f.svc.PlaceOrder(context.Background(), "2025001", bad, payment.Cash{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestPlaceOrder_SnapshotIsIndependentOfCart(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.Zero)
	lines := cart(4000)

	o, err := f.svc.PlaceOrder(context.Background(), "2025001", lines, payment.Cash{})
	require.NoError(t, err)
	lines[0].UnitPrice = money.FromCents(9900)

	stored, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", stored.Lines[0].UnitPrice.String())
	assert.Equal(t, []string{o.ID}, f.history.OrderIDs("2025001"))
}

func TestUpdateStatus_NotifiesOnceWhenReady(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.Zero)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(4000), payment.Cash{})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusPreparing))
	assert.Empty(t, f.notifier.Events())

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))
	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))

	assert.Equal(t, []readyEvent{{StudentID: "2025001", OrderID: o.ID}}, f.notifier.Events())
}

func TestUpdateStatus_ConcurrentReadyNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(4000), payment.Cash{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))
		}()
	}
	wg.Wait()

	assert.Len(t, f.notifier.Events(), 1)
}

func TestUpdateStatus_UnknownOrderIsIgnored(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.svc.UpdateStatus(context.Background(), "missing", order.StatusPreparing))
	assert.Empty(t, f.notifier.Events())
}

func TestUpdateStatus_StrictTransitions(t *testing.T) {
	f := newFixture(t, WithStrictTransitions(true))
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(4000), payment.Cash{})
	require.NoError(t, err)

	err = f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup)
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusPreparing))
	err = f.svc.UpdateStatus(ctx, o.ID, order.StatusPlaced)
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))
	assert.Len(t, f.notifier.Events(), 1)
}

func TestUpdateStatus_LenientAllowsAnyMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(4000), payment.Cash{})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))
	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusPlaced))
	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))

	assert.Len(t, f.notifier.Events(), 2)
}

func TestOrdersOfAndListByStatus(t *testing.T) {
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)

		return clock
	}))
	ctx := context.Background()

	first, err := f.svc.PlaceOrder(ctx, "2025001", cart(1000), payment.Cash{})
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(ctx, "2025001", cart(2000), payment.Cash{})
	require.NoError(t, err)
	third, err := f.svc.PlaceOrder(ctx, "2025002", cart(3000), payment.Cash{})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateStatus(ctx, second.ID, order.StatusPreparing))

	mine := f.svc.OrdersOf(ctx, "2025001")
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	placed := f.svc.ListByStatus(ctx, order.StatusPlaced)
	require.Len(t, placed, 2)
	assert.Equal(t, first.ID, placed[0].ID)
	assert.Equal(t, third.ID, placed[1].ID)

	assert.NotNil(t, f.svc.OrdersOf(ctx, "nobody"))
}

func TestRemoveOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(1000), payment.Cash{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.RemoveOrder(ctx, o.ID), apperrors.ErrIllegalTransition)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusReadyForPickup))
	require.NoError(t, f.svc.RemoveOrder(ctx, o.ID))

	_, err = f.svc.Get(ctx, o.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.RemoveOrder(ctx, o.ID), apperrors.ErrNotFound)
}

func TestReloadReproducesOrders(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "2025001", 0, money.Zero)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, "2025001", cart(4000, 2000), payment.Card{})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, order.StatusPreparing))

	client := flatfile.MustNewClient(f.dir)
	orders := orderrepo.NewOrderRepository(client)
	require.NoError(t, orders.Load())
	history := historyrepo.NewHistoryRepository(client)
	require.NoError(t, history.Load())

	got, err := orders.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, got.Status)
	assert.Equal(t, "60.00", got.Total.String())
	assert.Equal(t, 6, got.PointsEarned)
	assert.Len(t, got.Lines, 2)
	assert.Equal(t, []string{o.ID}, history.OrderIDs("2025001"))
}
