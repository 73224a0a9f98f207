package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	moneyScale = 2

	// Bounds on parsed amounts. Comparing decimals rescales them to a common
	// exponent, so both the exponent and the coefficient must stay small.
	maxMoneyExponent        = 15
	maxMoneyCoefficientBits = 96
)

// Money is a fixed-point amount with at most two decimal places.
// The zero value is zero.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

func NewMoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -moneyScale)}
}

func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	return moneyFromDecimal(d)
}

func MustParseMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func moneyFromDecimal(d decimal.Decimal) (Money, error) {
	if exp := d.Exponent(); exp > maxMoneyExponent || exp < -maxMoneyExponent {
		return Money{}, fmt.Errorf("%w: exponent %d out of range", ErrInvalidAmount, exp)
	}
	if d.Coefficient().BitLen() > maxMoneyCoefficientBits {
		return Money{}, fmt.Errorf("%w: too many digits", ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(moneyScale)) {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), moneyScale)
	}
	return Money{amount: d}, nil
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub may produce a negative amount; callers decide whether that is acceptable.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) Cents() int64 {
	return m.amount.Shift(moneyScale).IntPart()
}

func (m Money) Float64() float64 {
	return m.amount.InexactFloat64()
}

func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: not a decimal number", ErrInvalidAmount)
	}

	parsed, err := moneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
