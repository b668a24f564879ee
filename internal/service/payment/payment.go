package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

// Authorizer approves or declines a charge.
type Authorizer interface {
	Authorize(ctx context.Context, amount money.Amount) bool
	Method() string
}

// Cash always approves; the student pays at the counter.
type Cash struct{}

func (Cash) Authorize(_ context.Context, amount money.Amount) bool {
	slog.Info("Cash payment accepted", "amount", amount.String())

	return true
}

func (Cash) Method() string { return "cash" }

// Card always approves.
type Card struct{}

func (Card) Authorize(_ context.Context, amount money.Amount) bool {
	slog.Info("Card payment authorized", "amount", amount.String())

	return true
}

func (Card) Method() string { return "card" }

// Decline rejects every charge.
type Decline struct{}

func (Decline) Authorize(_ context.Context, amount money.Amount) bool {
	slog.Info("Payment declined", "amount", amount.String())

	return false
}

func (Decline) Method() string { return "decline" }

// ForMethod returns the authorizer registered for a payment method name.
func ForMethod(method string) (Authorizer, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cash", "":
		return Cash{}, nil
	case "card":
		return Card{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrInvalidArgument, method)
	}
}
