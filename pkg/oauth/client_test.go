package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
	"github.com/sellerlegend/sellerlegend-go/pkg/tokenstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	cred := tokenstore.New()
	client := New("client-id", "client-secret", server.URL, "http://localhost:5001/callback", cred, zerolog.Nop())
	return client, server
}

func writeToken(w http.ResponseWriter, tok TokenResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tok)
}

func TestAuthorizationURL_GeneratedState(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	u1, s1, err := client.AuthorizationURL("", "")
	require.NoError(t, err)
	_, s2, err := client.AuthorizationURL("", "")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.GreaterOrEqual(t, len(s1), 43, "32 bytes of entropy is at least 43 URL-safe characters")

	parsed, err := url.Parse(u1)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:5001/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "*", q.Get("scope"))
	assert.Equal(t, s1, q.Get("state"))
	assert.Contains(t, parsed.Path, "/oauth/authorize")
}

func TestAuthorizationURL_ExplicitStateAndScope(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	u, state, err := client.AuthorizationURL("my-state", "read-only")
	require.NoError(t, err)
	assert.Equal(t, "my-state", state)

	q, _ := url.Parse(u)
	assert.Equal(t, "my-state", q.Query().Get("state"))
	assert.Equal(t, "read-only", q.Query().Get("scope"))
}

func TestExchangeAuthorizationCode_Success(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:5001/callback", r.PostForm.Get("redirect_uri"))
		writeToken(w, TokenResponse{AccessToken: "A", RefreshToken: "R", ExpiresIn: 3600, TokenType: "Bearer"})
	})
	defer server.Close()

	_, state, err := client.AuthorizationURL("", "")
	require.NoError(t, err)

	tok, err := client.ExchangeAuthorizationCode(context.Background(), "the-code", state)
	require.NoError(t, err)
	assert.Equal(t, "A", tok.AccessToken)
	assert.Equal(t, "R", tok.RefreshToken)

	access, ok := client.Credential().AccessToken()
	require.True(t, ok)
	assert.Equal(t, "A", access)
	assert.True(t, client.Credential().IsValid())
}

func TestExchangeAuthorizationCode_StateMismatch(t *testing.T) {
	calls := 0
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	defer server.Close()

	_, _, err := client.AuthorizationURL("expected-state", "")
	require.NoError(t, err)

	_, err = client.ExchangeAuthorizationCode(context.Background(), "code", "wrong-state")
	require.Error(t, err)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)
	assert.Contains(t, err.Error(), "state")
	assert.Equal(t, 0, calls, "a state mismatch must never reach the network")
}

func TestExchangeAuthorizationCode_StateConsumedOnSuccess(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, TokenResponse{AccessToken: "A", ExpiresIn: 3600})
	})
	defer server.Close()

	_, state, _ := client.AuthorizationURL("", "")
	_, err := client.ExchangeAuthorizationCode(context.Background(), "code", state)
	require.NoError(t, err)

	// With the state consumed, a second exchange carries no expectation.
	_, err = client.ExchangeAuthorizationCode(context.Background(), "code", "anything")
	assert.NoError(t, err)
}

func TestExchangeClientCredentials_Success(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "*", r.PostForm.Get("scope"))
		writeToken(w, TokenResponse{AccessToken: "CC", ExpiresIn: 3600})
	})
	defer server.Close()

	tok, err := client.ExchangeClientCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CC", tok.AccessToken)
	assert.True(t, client.Credential().IsValid())
}

func TestExchangeClientCredentials_ServerRejection(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client","error_description":"Client authentication failed"}`))
	})
	defer server.Close()

	_, err := client.ExchangeClientCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)

	var apiErr *slerrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Client authentication failed")
	assert.Equal(t, "invalid_client", apiErr.Body["error"])
}

func TestExchange_TransportError(t *testing.T) {
	client, server := newTestClient(t, nil)
	server.Close() // connection refused

	_, err := client.ExchangeClientCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication, "transport failures surface as authentication errors")
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	calls := 0
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	defer server.Close()

	_, err := client.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no refresh token available")
	assert.Equal(t, 0, calls)
}

func TestRefresh_Success_PreservesOldRefreshToken(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "R", r.PostForm.Get("refresh_token"))
		// No refresh_token in the response, per server rotation policy.
		writeToken(w, TokenResponse{AccessToken: "A2", ExpiresIn: 3600})
	})
	defer server.Close()

	client.Credential().Store("A1", "R", 3600)

	tok, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A2", tok.AccessToken)

	refresh, ok := client.Credential().RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "R", refresh)
}

func TestRefresh_RejectedClearsCredential(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"The refresh token is invalid."}`))
	})
	defer server.Close()

	client.Credential().Store("A", "R", 3600)

	_, err := client.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)

	_, hasAccess := client.Credential().AccessToken()
	_, hasRefresh := client.Credential().RefreshToken()
	assert.False(t, hasAccess)
	assert.False(t, hasRefresh)
}

func TestRefresh_NetworkErrorKeepsCredential(t *testing.T) {
	client, server := newTestClient(t, nil)
	server.Close()

	client.Credential().Store("A", "R", 3600)

	_, err := client.Refresh(context.Background())
	require.Error(t, err)

	// A network failure says nothing about the refresh token's validity.
	_, hasRefresh := client.Credential().RefreshToken()
	assert.True(t, hasRefresh)
}

func TestEnsureValid_NoopWhenValid(t *testing.T) {
	calls := 0
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	defer server.Close()

	client.Credential().Store("A", "R", 3600)
	require.NoError(t, client.EnsureValid(context.Background()))
	assert.Equal(t, 0, calls)
}

func TestEnsureValid_RefreshesStaleToken(t *testing.T) {
	calls := 0
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeToken(w, TokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
	})
	defer server.Close()

	client.Credential().Store("stale", "R", 10) // inside the 30s margin

	require.NoError(t, client.EnsureValid(context.Background()))
	assert.Equal(t, 1, calls)

	access, _ := client.Credential().AccessToken()
	assert.Equal(t, "fresh", access)
}

func TestEnsureValid_NoTokenNoRefresh(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	err := client.EnsureValid(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)
	assert.Contains(t, err.Error(), "no refresh token")
}

func TestEnsureValid_SingleFlight(t *testing.T) {
	var calls atomic.Int32
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeToken(w, TokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
	})
	defer server.Close()

	client.Credential().SetRefreshToken("R")

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.EnsureValid(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent callers must share one refresh")
}

func TestAuthorizationHeader(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	client.Credential().SetAccessToken("tok", 0)

	header, err := client.AuthorizationHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", header)
}

func TestApply(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	client.Credential().SetAccessToken("tok", 0)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, client.Apply(req))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestApply_AuthErrorPropagates(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	err := client.Apply(req)
	assert.ErrorIs(t, err, slerrors.ErrAuthentication)
}

func TestTryGrants_FallsBack(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") == "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		writeToken(w, TokenResponse{AccessToken: "CC", ExpiresIn: 3600})
	})
	defer server.Close()

	client.Credential().SetRefreshToken("dead")

	tok, outcomes, err := client.TryGrants(context.Background(), GrantRefreshToken, GrantClientCredentials)
	require.NoError(t, err)
	assert.Equal(t, "CC", tok.AccessToken)
	require.Len(t, outcomes, 2)
	assert.Equal(t, GrantRefreshToken, outcomes[0].Grant)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, GrantClientCredentials, outcomes[1].Grant)
	assert.NoError(t, outcomes[1].Err)
}

func TestTryGrants_AllFail(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	_, outcomes, err := client.TryGrants(context.Background(), GrantRefreshToken, GrantClientCredentials)
	require.Error(t, err)
	require.Len(t, outcomes, 2)
	// No refresh token held, so the refresh attempt fails locally.
	assert.Contains(t, outcomes[0].Err.Error(), "no refresh token")
	var apiErr *slerrors.APIError
	require.ErrorAs(t, outcomes[1].Err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestTryGrants_InteractiveGrantRejected(t *testing.T) {
	client, server := newTestClient(t, nil)
	defer server.Close()

	_, outcomes, err := client.TryGrants(context.Background(), GrantAuthorizationCode)
	require.Error(t, err)
	require.Len(t, outcomes, 1)
	assert.Contains(t, outcomes[0].Err.Error(), "interactive")
}

func TestTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "42",
		"aud":    "client-id",
		"jti":    "token-id",
		"exp":    exp.Unix(),
		"scopes": []string{"*"},
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	claims, err := TokenClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "client-id", claims.ClientID)
	assert.Equal(t, "token-id", claims.TokenID)
	assert.Equal(t, []string{"*"}, claims.Scopes)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenClaims_NotAJWT(t *testing.T) {
	_, err := TokenClaims("opaque-token")
	assert.Error(t, err)
}
