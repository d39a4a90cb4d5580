// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity represents an item quantity with full precision.
// Uses decimal.Decimal to avoid floating-point errors: balances are derived
// by summing event logs, and drift would silently break the allocation caps.
type Quantity = decimal.Decimal

// NewQuantity creates a Quantity from a float.
// WARNING: Use NewQuantityFromString for precise values.
func NewQuantity(f float64) Quantity {
	return decimal.NewFromFloat(f)
}

// NewQuantityFromString creates a Quantity from a string.
// This is the preferred method for quantities read from external input.
func NewQuantityFromString(s string) (Quantity, error) {
	return decimal.NewFromString(s)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroQuantity returns zero Quantity value.
func ZeroQuantity() Quantity {
	return decimal.Zero
}

// ClampZero returns q, or zero when q is negative.
// Over-allocation is never credited back as negative availability.
func ClampZero(q Quantity) Quantity {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// MinQuantity returns the smaller of a and b.
func MinQuantity(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}
