package callback

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallback_DeliversCodeAndState(t *testing.T) {
	srv := New("localhost:0", "/callback", zerolog.Nop())

	req, _ := http.NewRequest("GET", "/callback?code=auth-code-1&state=state-1", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Authorization complete")

	res, err := srv.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-1", res.Code)
	assert.Equal(t, "state-1", res.State)
	assert.Empty(t, res.Error)
}

func TestCallback_ProviderError(t *testing.T) {
	srv := New("localhost:0", "/callback", zerolog.Nop())

	req, _ := http.NewRequest("GET", "/callback?error=access_denied", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	res, err := srv.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "access_denied", res.Error)
	assert.Empty(t, res.Code)
}

func TestCallback_OnlyFirstHitCounts(t *testing.T) {
	srv := New("localhost:0", "/callback", zerolog.Nop())

	for _, code := range []string{"first", "second"} {
		req, _ := http.NewRequest("GET", "/callback?code="+code+"&state=s", nil)
		resp, err := srv.App().Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	res, err := srv.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", res.Code)
}

func TestCallback_WaitTimeout(t *testing.T) {
	srv := New("localhost:0", "/callback", zerolog.Nop())

	_, err := srv.Wait(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallback_WaitContextCancelled(t *testing.T) {
	srv := New("localhost:0", "/callback", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := srv.Wait(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
