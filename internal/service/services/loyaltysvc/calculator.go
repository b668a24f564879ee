package loyaltysvc

import (
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/shopspring/decimal"
)

// Calculator converts a paid amount into loyalty points.
type Calculator interface {
	Points(amount money.Amount) int
}

// BasicCalculator grants one point per EGPPerPoint spent.
type BasicCalculator struct {
	EGPPerPoint int
}

// NewBasicCalculator creates a flat-rate calculator.
func NewBasicCalculator(egpPerPoint int) BasicCalculator {
	return BasicCalculator{EGPPerPoint: egpPerPoint}
}

func (c BasicCalculator) Points(amount money.Amount) int {
	return floorDiv(amount, c.EGPPerPoint)
}

// TieredCalculator uses a cheaper rate for amounts of at least Threshold.
type TieredCalculator struct {
	Threshold         money.Amount
	EGPPerPoint       int
	TieredEGPPerPoint int
}

// NewTieredCalculator creates a calculator with a second rate from threshold upwards.
func NewTieredCalculator(threshold money.Amount, egpPerPoint, tieredEGPPerPoint int) TieredCalculator {
	return TieredCalculator{
		Threshold:         threshold,
		EGPPerPoint:       egpPerPoint,
		TieredEGPPerPoint: tieredEGPPerPoint,
	}
}

func (c TieredCalculator) Points(amount money.Amount) int {
	if amount.Cmp(c.Threshold) >= 0 {
		return floorDiv(amount, c.TieredEGPPerPoint)
	}

	return floorDiv(amount, c.EGPPerPoint)
}

func floorDiv(amount money.Amount, rate int) int {
	if rate <= 0 || !amount.IsPositive() {
		return 0
	}

	return int(amount.Decimal().Div(decimal.NewFromInt(int64(rate))).Floor().IntPart())
}
