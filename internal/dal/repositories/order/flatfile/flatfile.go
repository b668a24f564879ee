package flatfilerepo

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/table"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
)

// FileName is the order table file.
const FileName = "orders.txt"

const (
	fieldSeparator = "|"
	lineSeparator  = ","
	partSeparator  = ":"
)

// OrderCodec encodes orders as orderId|studentId|status|total|pointsEarned.
// With PersistLines the record carries two more fields: the creation time
// and the line snapshots (itemId:qty:unitPrice:name, comma separated).
type OrderCodec struct {
	PersistLines bool
}

func (OrderCodec) Key(o order.Order) string { return o.ID }

func (c OrderCodec) Encode(o order.Order) string {
	fields := []string{
		o.ID,
		o.StudentID,
		o.Status.String(),
		o.Total.String(),
		strconv.Itoa(o.PointsEarned),
	}
	if c.PersistLines {
		fields = append(fields, o.CreatedAt.UTC().Format(time.RFC3339Nano), encodeLines(o.Lines))
	}

	return strings.Join(fields, fieldSeparator)
}

// Decode accepts both record layouts regardless of PersistLines.
func (OrderCodec) Decode(record string) (order.Order, error) {
	p := strings.Split(record, fieldSeparator)
	if len(p) < 5 {
		return order.Order{}, fmt.Errorf("short order record: %d fields", len(p))
	}

	status, err := order.ParseStatus(p[2])
	if err != nil {
		return order.Order{}, err
	}
	total, err := money.Parse(strings.TrimSpace(p[3]))
	if err != nil {
		return order.Order{}, err
	}
	points, err := strconv.Atoi(strings.TrimSpace(p[4]))
	if err != nil {
		return order.Order{}, fmt.Errorf("invalid points %q: %w", p[4], err)
	}

	var createdAt time.Time
	if len(p) >= 6 && p[5] != "" {
		createdAt, err = time.Parse(time.RFC3339Nano, p[5])
		if err != nil {
			return order.Order{}, fmt.Errorf("invalid creation time %q: %w", p[5], err)
		}
	}

	var lines []order.Line
	if len(p) >= 7 {
		lines, err = decodeLines(p[6])
		if err != nil {
			return order.Order{}, err
		}
	}

	return order.Restore(p[0], p[1], status, total, points, createdAt, lines)
}

func encodeLines(lines []order.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strings.Join([]string{
			url.QueryEscape(l.ItemID),
			strconv.Itoa(l.Quantity),
			l.UnitPrice.String(),
			url.QueryEscape(l.ItemName),
		}, partSeparator))
	}

	return strings.Join(parts, lineSeparator)
}

func decodeLines(s string) ([]order.Line, error) {
	if s == "" {
		return []order.Line{}, nil
	}

	raw := strings.Split(s, lineSeparator)
	lines := make([]order.Line, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, partSeparator)
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed order line %q", r)
		}
		itemID, err := url.QueryUnescape(parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed item id %q: %w", parts[0], err)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("malformed quantity %q", parts[1])
		}
		price, err := money.Parse(parts[2])
		if err != nil {
			return nil, err
		}
		name, err := url.QueryUnescape(parts[3])
		if err != nil {
			return nil, fmt.Errorf("malformed item name %q: %w", parts[3], err)
		}
		lines = append(lines, order.Line{ItemID: itemID, ItemName: name, UnitPrice: price, Quantity: qty})
	}

	return lines, nil
}

// OrderRepository stores orders in a flat table file.
type OrderRepository struct {
	*table.Table[string, order.Order]
}

// option is a function that configures the OrderRepository codec.
type option func(*OrderCodec)

// WithLinePersistence selects the extended record layout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLinePersistence(enabled bool) option {
	return func(c *OrderCodec) {
		c.PersistLines = enabled
	}
}

// NewOrderRepository creates an order repository; call Load before use.
// Line persistence is on unless disabled with WithLinePersistence(false).
func NewOrderRepository(client *flatfile.Client, opts ...option) *OrderRepository {
	codec := OrderCodec{PersistLines: true}
	for _, opt := range opts {
		opt(&codec)
	}

	return &OrderRepository{
		Table: table.New[string, order.Order]("orders", client.Store(FileName), codec),
	}
}

// ByStudent returns the student's orders, newest first.
func (r *OrderRepository) ByStudent(studentID string) []order.Order {
	orders := r.Find(func(o order.Order) bool { return o.StudentID == studentID })
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders
}

// ByStatus returns the orders in the given status, oldest first.
func (r *OrderRepository) ByStatus(status order.Status) []order.Order {
	orders := r.Find(func(o order.Order) bool { return o.Status == status })
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	return orders
}
