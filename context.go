package route

import (
	"context"
)

type contextKey[T any] struct{}

// SetValue stores a typed value in the request context. For use in hooks and decorations.
func SetValue[T any](r *Request, val T) {
	r.ctx = context.WithValue(r.ctx, contextKey[T]{}, val)
}

// GetValue retrieves a typed value from the request context. For use in handlers.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}
