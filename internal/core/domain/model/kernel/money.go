package kernel

import (
	"fmt"

	"foodcourt/internal/pkg/errs"
)

// Money is a monetary amount in integer cents. Amounts are never represented
// as floats anywhere in the domain. The zero value is a valid zero amount.
type Money struct {
	cents int64
}

// NewMoney creates a Money amount. Negative amounts are rejected: the order
// model has no concept of refunds or credits.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"money", fmt.Errorf("%d cents is negative", cents))
	}
	return Money{cents: cents}, nil
}

// Cents returns the amount in integer cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// IsEqual reports whether two amounts are identical.
func (m Money) IsEqual(other Money) bool {
	return m.cents == other.cents
}

// String renders the amount as a decimal for logs, e.g. "12.50".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}
