package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, BackoffFactor: 0.001, MaxDelay: 10 * time.Millisecond}
}

func TestDo_Success(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableError(t *testing.T) {
	calls := 0
	authErr := slerrors.NewAuth("bad credentials")
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return authErr
	})
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableError_EventualSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return slerrors.FromStatus(503, "unavailable", nil)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_RetryableError_BudgetExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return slerrors.FromStatus(500, "boom", nil)
	})
	assert.ErrorIs(t, err, slerrors.ErrServer)
	assert.Equal(t, 3, calls, "MaxAttempts=3 means exactly three attempts")
}

func TestDo_TransportErrorRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return slerrors.NewTransport("connection reset", errors.New("reset"))
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fastConfig(3), func(ctx context.Context) error {
		return slerrors.FromStatus(502, "bad gateway", nil)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_GenericNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return errors.New("generic error")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
