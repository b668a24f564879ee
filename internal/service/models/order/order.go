package order

import (
	"fmt"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/google/uuid"
)

// Order represents a placed cafeteria order.
// Only Status changes after creation.
type Order struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"studentId"`
	CreatedAt    time.Time    `json:"createdAt"`
	Lines        []Line       `json:"lines"`
	Total        money.Amount `json:"total"`
	PointsEarned int          `json:"pointsEarned"`
	Status       Status       `json:"status"`
}

// New creates an order in the Placed state with a fresh id.
// Total is the raw sum of the line snapshots.
func New(studentID string, lines []Line, now time.Time) Order {
	snapshot := make([]Line, len(lines))
	copy(snapshot, lines)

	return Order{
		ID:        uuid.New().String(),
		StudentID: studentID,
		CreatedAt: now,
		Lines:     snapshot,
		Total:     RawTotal(snapshot),
		Status:    StatusPlaced,
	}
}

// Restore rebuilds a persisted order, keeping its original id.
func Restore(
	id, studentID string,
	status Status,
	total money.Amount,
	pointsEarned int,
	createdAt time.Time,
	lines []Line,
) (Order, error) {
	if id == "" {
		return Order{}, fmt.Errorf("%w: empty order id", apperrors.ErrInvalidArgument)
	}
	if total.IsNegative() || pointsEarned < 0 {
		return Order{}, fmt.Errorf("%w: negative total or points", apperrors.ErrInvalidArgument)
	}
	if lines == nil {
		lines = []Line{}
	}

	return Order{
		ID:           id,
		StudentID:    studentID,
		CreatedAt:    createdAt,
		Lines:        lines,
		Total:        total,
		PointsEarned: pointsEarned,
		Status:       status,
	}, nil
}

// RawTotal sums unit price times quantity over the lines.
func RawTotal(lines []Line) money.Amount {
	total := money.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}

	return total
}

// Transition returns o moved to the given status.
// With strict set, only the next forward state is accepted.
func (o Order) Transition(to Status, strict bool) (Order, error) {
	if !to.Valid() {
		return o, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, to)
	}
	if strict && to != o.Status {
		next, ok := o.Status.Next()
		if !ok || next != to {
			return o, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalTransition, o.Status, to)
		}
	}
	o.Status = to

	return o, nil
}
