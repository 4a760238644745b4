// Package utils provides general-purpose helper utilities used across the
// relay service and the dashboard: context keys, HTTP response and event
// stream writing, the HTTP client wrapper, control token minting and
// validation, and identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// OperatorCtxKey stores the subject of a verified control token.
var OperatorCtxKey = contextKey("operator")

// GetOperatorFromContext returns the control token subject stored by the
// auth middleware, and whether one was present.
func GetOperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(OperatorCtxKey).(string)
	return operator, ok
}
