package student

import (
	"fmt"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

// Student is a registered cafeteria customer.
// Values are plain data: mutations return an updated copy and are persisted
// by the repository that applied them.
type Student struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"`
	Points       int          `json:"points"`
	Wallet       money.Amount `json:"wallet"`
}

// New creates a freshly registered student with no points and an empty wallet.
func New(id, name, passwordHash string) Student {
	return Student{
		ID:           id,
		Name:         name,
		PasswordHash: passwordHash,
		Wallet:       money.Zero,
	}
}

// Restore rebuilds a student from persisted fields, enforcing the balance invariants.
func Restore(id, name, passwordHash string, points int, wallet money.Amount) (Student, error) {
	if points < 0 {
		return Student{}, fmt.Errorf("%w: negative points %d", apperrors.ErrInvalidArgument, points)
	}
	if wallet.IsNegative() {
		return Student{}, fmt.Errorf("%w: negative wallet %s", apperrors.ErrInvalidArgument, wallet)
	}

	s := New(id, name, passwordHash)
	s.Points = points
	s.Wallet = wallet

	return s, nil
}

// AddPoints returns s with p more points.
func (s Student) AddPoints(p int) (Student, error) {
	if p < 0 {
		return s, fmt.Errorf("%w: cannot add %d points", apperrors.ErrInvalidArgument, p)
	}
	s.Points += p

	return s, nil
}

// DeductPoints returns s with p fewer points, or ErrInsufficientPoints.
func (s Student) DeductPoints(p int) (Student, error) {
	if p < 0 {
		return s, fmt.Errorf("%w: cannot deduct %d points", apperrors.ErrInvalidArgument, p)
	}
	if s.Points < p {
		return s, fmt.Errorf("%w: have %d, need %d", apperrors.ErrInsufficientPoints, s.Points, p)
	}
	s.Points -= p

	return s, nil
}

// CreditWallet returns s with amount added to the discount wallet.
func (s Student) CreditWallet(amount money.Amount) (Student, error) {
	if amount.IsNegative() {
		return s, fmt.Errorf("%w: cannot credit %s", apperrors.ErrInvalidArgument, amount)
	}
	s.Wallet = s.Wallet.Add(amount)

	return s, nil
}

// ConsumeWallet spends the wallet against total, up to the whole total.
// It returns the updated student and the amount applied.
func (s Student) ConsumeWallet(total money.Amount) (Student, money.Amount) {
	if !total.IsPositive() {
		return s, money.Zero
	}
	applied := money.Min(s.Wallet, total)
	s.Wallet = s.Wallet.Sub(applied)

	return s, applied
}
