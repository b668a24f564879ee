package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every amount is rounded to.
const Places = 2

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is an EGP amount with two decimal places.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// New rounds d to two decimal places.
func New(d decimal.Decimal) Amount {
	return Amount{d: d.Round(Places)}
}

// FromFloat builds an amount from a float, rounding to two decimal places.
func FromFloat(f float64) Amount {
	return New(decimal.NewFromFloat(f))
}

// FromCents builds an amount from an integer number of piasters.
func FromCents(cents int64) Amount {
	return Amount{d: decimal.New(cents, -Places)}
}

// Parse parses a decimal string such as "60", "60.0" or "60.00".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return New(d), nil
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return New(a.d.Add(b.d)) }

func (a Amount) Sub(b Amount) Amount { return New(a.d.Sub(b.d)) }

// Mul multiplies the amount by an integer quantity.
func (a Amount) Mul(qty int) Amount { return New(a.d.Mul(decimal.NewFromInt(int64(qty)))) }

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) IsZero() bool { return a.d.IsZero() }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}

	return b
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	return a.d.StringFixed(Places)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	*a = New(d)

	return nil
}
