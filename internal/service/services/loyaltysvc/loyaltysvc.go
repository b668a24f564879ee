package loyaltysvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/istudentrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Reward is a redeemable catalog entry.
type Reward struct {
	PointsCost int          `json:"pointsCost"`
	Discount   money.Amount `json:"discount"`
	ItemID     string       `json:"itemId,omitempty"`
}

// Ledger awards and redeems loyalty points on student accounts.
type Ledger struct {
	studentRepo istudentrepo.IStudentRepository
	calculator  Calculator

	discountReward Reward
	freeItemReward Reward
}

// option is a function that configures the Ledger.
type option func(*Ledger)

// MustNewLedger creates a new Ledger. It panics without a student repository.
func MustNewLedger(opts ...option) *Ledger {
	l := &Ledger{
		calculator:     NewBasicCalculator(10),
		discountReward: Reward{PointsCost: 50, Discount: money.FromCents(1000)},
		freeItemReward: Reward{PointsCost: 100, ItemID: "D001"},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.studentRepo == nil {
		panic("loyalty ledger requires a student repository")
	}

	return l
}

// WithStudentRepository sets the student repository for the Ledger.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStudentRepository(repo istudentrepo.IStudentRepository) option {
	return func(l *Ledger) {
		l.studentRepo = repo
	}
}

// WithCalculator sets the points policy.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCalculator(c Calculator) option {
	return func(l *Ledger) {
		l.calculator = c
	}
}

// WithRewards sets the discount and free item rewards offered to students.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRewards(discount, freeItem Reward) option {
	return func(l *Ledger) {
		l.discountReward = discount
		l.freeItemReward = freeItem
	}
}

// Rewards returns the configured discount and free item rewards.
func (l *Ledger) Rewards() (discount, freeItem Reward) {
	return l.discountReward, l.freeItemReward
}

// EarnPoints returns the points the amount is worth.
func (l *Ledger) EarnPoints(amount money.Amount) int {
	return l.calculator.Points(amount)
}

// AwardPoints credits the points earned on amount to the student and
// returns them. Unknown students are ignored.
func (l *Ledger) AwardPoints(ctx context.Context, studentID string, amount money.Amount) int {
	_, span := otel.Tracer("loyaltysvc").Start(ctx, "Ledger.AwardPoints")
	defer span.End()

	points := l.EarnPoints(amount)
	span.SetAttributes(attribute.String("student_id", studentID), attribute.Int("points", points))
	if points == 0 {
		return 0
	}

	_, err := l.studentRepo.Apply(studentID, func(s student.Student) (student.Student, error) {
		return s.AddPoints(points)
	})
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		slog.Warn("Points not awarded to unknown student", "student_id", studentID, "points", points)
	case err != nil:
		slog.Error("Failed to award points", "student_id", studentID, "error", err)
	default:
		slog.Info("Points awarded", "student_id", studentID, "points", points)
	}

	return points
}

// RedeemDiscount exchanges pointsCost points for egpDiscount in the wallet.
// The check and both balance changes happen in one mutation, so concurrent
// redemptions never spend the same points twice.
func (l *Ledger) RedeemDiscount(
	ctx context.Context,
	studentID string,
	pointsCost int,
	egpDiscount money.Amount,
) bool {
	_, span := otel.Tracer("loyaltysvc").Start(ctx, "Ledger.RedeemDiscount")
	defer span.End()

	_, err := l.studentRepo.Apply(studentID, func(s student.Student) (student.Student, error) {
		s, err := s.DeductPoints(pointsCost)
		if err != nil {
			return s, err
		}

		return s.CreditWallet(egpDiscount)
	})
	if err != nil {
		slog.Info("Discount not redeemed", "student_id", studentID, "points_cost", pointsCost, "error", err)

		return false
	}

	slog.Info("Discount redeemed", "student_id", studentID, "points_cost", pointsCost, "discount", egpDiscount.String())

	return true
}

// RedeemFreeItem deducts pointsCost points for itemID.
// Only the points are taken: no item or order is granted.
func (l *Ledger) RedeemFreeItem(ctx context.Context, studentID string, pointsCost int, itemID string) bool {
	_, span := otel.Tracer("loyaltysvc").Start(ctx, "Ledger.RedeemFreeItem")
	defer span.End()

	_, err := l.studentRepo.Apply(studentID, func(s student.Student) (student.Student, error) {
		return s.DeductPoints(pointsCost)
	})
	if err != nil {
		slog.Info("Free item not redeemed", "student_id", studentID, "item_id", itemID, "error", err)

		return false
	}

	slog.Info("Free item redeemed", "student_id", studentID, "item_id", itemID, "points_cost", pointsCost)

	return true
}

// PointsOf returns the student's balance, 0 for unknown students.
func (l *Ledger) PointsOf(ctx context.Context, studentID string) int {
	_, span := otel.Tracer("loyaltysvc").Start(ctx, "Ledger.PointsOf")
	defer span.End()

	s, err := l.studentRepo.Get(studentID)
	if err != nil {
		return 0
	}

	return s.Points
}

// WalletOf returns the student's discount wallet, zero for unknown students.
func (l *Ledger) WalletOf(ctx context.Context, studentID string) money.Amount {
	_, span := otel.Tracer("loyaltysvc").Start(ctx, "Ledger.WalletOf")
	defer span.End()

	s, err := l.studentRepo.Get(studentID)
	if err != nil {
		return money.Zero
	}

	return s.Wallet
}
