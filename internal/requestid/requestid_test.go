package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsure_MintsOnce(t *testing.T) {
	ctx, id := Ensure(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))

	// A second Ensure on the same context reuses the ID.
	ctx2, id2 := Ensure(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}

func TestWith(t *testing.T) {
	ctx := With(context.Background(), "test-123")
	assert.Equal(t, "test-123", FromContext(ctx))

	_, id := Ensure(ctx)
	assert.Equal(t, "test-123", id)
}
