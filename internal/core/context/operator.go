// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Operator identifies the person performing write operations.
// Allocation events record it as "responsavel".
type Operator struct {
	Name  string
	Email string
}

type operatorKey struct{}

// WithOperator adds Operator to context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// GetOperator returns Operator from context.
func GetOperator(ctx context.Context) *Operator {
	if v, ok := ctx.Value(operatorKey{}).(*Operator); ok {
		return v
	}
	return nil
}

// GetOperatorName returns the operator name from context or empty string.
func GetOperatorName(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.Name
	}
	return ""
}
