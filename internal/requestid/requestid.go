// Package requestid correlates outbound API calls via the X-Request-Id
// header. An ID is minted once per logical call; every retry attempt of
// that call carries the same ID so server-side logs line up.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// With returns a context carrying the given correlation ID.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation ID in ctx, or "" when none is set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ensure returns a context guaranteed to carry a correlation ID, minting
// one when absent, together with the ID.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return With(ctx, id), id
}
