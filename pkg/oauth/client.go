// Package oauth drives the OAuth2 grant flows against a SellerLegend
// instance (Laravel Passport) and keeps the client credential current.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sellerlegend/sellerlegend-go/internal/metrics"
	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
	"github.com/sellerlegend/sellerlegend-go/pkg/tokenstore"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenResponse is the token endpoint's JSON payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// Grant identifies an OAuth2 grant type.
type Grant string

const (
	GrantClientCredentials Grant = "client_credentials"
	GrantAuthorizationCode Grant = "authorization_code"
	GrantRefreshToken      Grant = "refresh_token"
)

// GrantOutcome records the result of one attempted grant, so callers of
// TryGrants can tell an unsupported grant from bad credentials from a
// network failure without inspecting error types.
type GrantOutcome struct {
	Grant Grant
	Err   error
}

// Client performs the grant exchanges and owns the expected authorization
// state nonce. It is safe for concurrent use; at most one refresh is in
// flight at a time and concurrent callers await its result.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	redirectURI  string
	tokenURL     string
	authorizeURL string

	cred       *tokenstore.Credential
	httpClient HTTPClient
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	stateMu sync.Mutex
	state   string

	refreshGroup singleflight.Group
}

// Option configures the OAuth client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the token endpoint request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithMetrics records refresh outcomes and token validity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates an OAuth client bound to the given credential store.
func New(clientID, clientSecret, baseURL, redirectURI string, cred *tokenstore.Credential, logger zerolog.Logger, opts ...Option) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	if redirectURI == "" {
		redirectURI = "http://localhost:5001/callback"
	}
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      base,
		redirectURI:  redirectURI,
		tokenURL:     base + "/oauth/token",
		authorizeURL: base + "/oauth/authorize",
		cred:         cred,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger.With().Str("component", "oauth").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credential returns the credential store this client mutates.
func (c *Client) Credential() *tokenstore.Credential { return c.cred }

// AuthorizationURL builds the authorization-endpoint URL for the
// authorization-code flow. A cryptographically random URL-safe state is
// generated when none is supplied, and is remembered for validation when
// the callback returns. scope defaults to "*".
func (c *Client) AuthorizationURL(state, scope string) (string, string, error) {
	if state == "" {
		var err error
		state, err = randomState()
		if err != nil {
			return "", "", fmt.Errorf("generating state: %w", err)
		}
	}
	if scope == "" {
		scope = "*"
	}

	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", scope)
	params.Set("state", state)

	return c.authorizeURL + "?" + params.Encode(), state, nil
}

// randomState returns 32 bytes of entropy as a URL-safe string.
func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExchangeAuthorizationCode trades an authorization code for tokens. When an
// expected state was set by AuthorizationURL, a mismatching state fails
// before any network call is made.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code, state string) (*TokenResponse, error) {
	c.stateMu.Lock()
	expected := c.state
	c.stateMu.Unlock()

	if expected != "" && state != expected {
		return nil, slerrors.NewAuth("state parameter mismatch - possible CSRF attack")
	}

	form := url.Values{}
	form.Set("grant_type", string(GrantAuthorizationCode))
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("code", code)

	tok, err := c.token(ctx, form, "token exchange")
	if err != nil {
		return nil, err
	}

	// State is single-use; consume it on success.
	c.stateMu.Lock()
	c.state = ""
	c.stateMu.Unlock()

	c.store(tok)
	return tok, nil
}

// ExchangeClientCredentials authenticates server-to-server with the
// client-credentials grant.
func (c *Client) ExchangeClientCredentials(ctx context.Context) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", string(GrantClientCredentials))
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", "*")

	tok, err := c.token(ctx, form, "client credentials authentication")
	if err != nil {
		return nil, err
	}
	c.store(tok)
	return tok, nil
}

// Refresh exchanges the held refresh token for a new access token. A
// rejected refresh clears all stored tokens so subsequent calls fail
// deterministically instead of looping against a dead refresh token.
func (c *Client) Refresh(ctx context.Context) (*TokenResponse, error) {
	refresh, ok := c.cred.RefreshToken()
	if !ok {
		return nil, slerrors.NewAuth("no refresh token available")
	}

	form := url.Values{}
	form.Set("grant_type", string(GrantRefreshToken))
	form.Set("refresh_token", refresh)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	tok, err := c.token(ctx, form, "token refresh")
	if err != nil {
		var apiErr *slerrors.APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode > 0 {
			// The server rejected the refresh token; it is dead.
			c.cred.Clear()
		}
		if c.metrics != nil {
			c.metrics.RecordRefresh("failure")
		}
		return nil, err
	}

	c.store(tok)
	if c.metrics != nil {
		c.metrics.RecordRefresh("success")
	}
	c.logger.Debug().Msg("access token refreshed")
	return tok, nil
}

// EnsureValid is the single gate every outgoing request passes through. It
// is a no-op when the credential is valid; otherwise it refreshes, or fails
// when no refresh path exists. Concurrent callers observing a stale token
// share a single in-flight refresh.
func (c *Client) EnsureValid(ctx context.Context) error {
	if c.cred.IsValid() {
		return nil
	}
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		// A waiter may arrive after the winner already refreshed.
		if c.cred.IsValid() {
			return nil, nil
		}
		if _, ok := c.cred.RefreshToken(); !ok {
			return nil, slerrors.NewAuth("no valid access token and no refresh token available")
		}
		return c.Refresh(ctx)
	})
	if c.metrics != nil {
		c.metrics.SetTokenValid(c.cred.IsValid())
	}
	return err
}

// AuthorizationHeader returns the bearer header value for the current
// access token, refreshing first when necessary.
func (c *Client) AuthorizationHeader(ctx context.Context) (string, error) {
	if err := c.EnsureValid(ctx); err != nil {
		return "", err
	}
	token, ok := c.cred.AccessToken()
	if !ok {
		// Unreachable given EnsureValid's contract; asserted anyway.
		return "", slerrors.NewAuth("no access token available")
	}
	return "Bearer " + token, nil
}

// Apply attaches the Authorization header to an outgoing request.
func (c *Client) Apply(req *http.Request) error {
	header, err := c.AuthorizationHeader(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	return nil
}

// TryGrants attempts the given non-interactive grants in order and returns
// the first successful token. The per-grant outcomes are always returned so
// the caller can distinguish failure modes.
func (c *Client) TryGrants(ctx context.Context, grants ...Grant) (*TokenResponse, []GrantOutcome, error) {
	outcomes := make([]GrantOutcome, 0, len(grants))
	for _, grant := range grants {
		var (
			tok *TokenResponse
			err error
		)
		switch grant {
		case GrantRefreshToken:
			tok, err = c.Refresh(ctx)
		case GrantClientCredentials:
			tok, err = c.ExchangeClientCredentials(ctx)
		default:
			err = slerrors.NewAuth(fmt.Sprintf("grant %q requires interactive authorization", grant))
		}
		outcomes = append(outcomes, GrantOutcome{Grant: grant, Err: err})
		if err == nil {
			return tok, outcomes, nil
		}
		c.logger.Debug().Str("grant", string(grant)).Err(err).Msg("grant attempt failed")
	}
	return nil, outcomes, slerrors.NewAuth("all authentication grants failed")
}

// store records a token response and updates the validity gauge.
func (c *Client) store(tok *TokenResponse) {
	c.cred.Store(tok.AccessToken, tok.RefreshToken, tok.ExpiresIn)
	if c.metrics != nil {
		c.metrics.SetTokenValid(c.cred.IsValid())
	}
}

// token POSTs a form to the token endpoint and decodes the response. Every
// failure mode surfaces as an authentication error; raw transport errors
// never escape.
func (c *Client) token(ctx context.Context, form url.Values, action string) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, slerrors.NewAuth(fmt.Sprintf("%s: building request: %v", action, err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &slerrors.APIError{
			Kind:    slerrors.KindAuthentication,
			Message: fmt.Sprintf("%s request failed: %v", action, err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, slerrors.NewAuth(fmt.Sprintf("%s: reading response: %v", action, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		message := strings.TrimSpace(string(raw))
		if desc, ok := body["error_description"].(string); ok && desc != "" {
			message = desc
		}
		return nil, &slerrors.APIError{
			Kind:       slerrors.KindAuthentication,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s failed: %s", action, message),
			Body:       body,
		}
	}

	var tok TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, slerrors.NewAuth(fmt.Sprintf("%s: decoding response: %v", action, err))
	}
	return &tok, nil
}
