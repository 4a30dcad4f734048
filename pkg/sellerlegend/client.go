// Package sellerlegend is a typed client for the SellerLegend e-commerce
// analytics API. Authentication, retries, and error classification all run
// through a single request pipeline; the per-resource services validate
// caller input and delegate to it.
package sellerlegend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellerlegend/sellerlegend-go/internal/metrics"
	"github.com/sellerlegend/sellerlegend-go/internal/requestid"
	"github.com/sellerlegend/sellerlegend-go/internal/retry"
	slerrors "github.com/sellerlegend/sellerlegend-go/pkg/errors"
)

const (
	apiVersion = "v2"
	userAgent  = "sellerlegend-go/1.0.0"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Authenticator applies authentication to requests. An oauth.Client
// satisfies this; test doubles can stub it.
type Authenticator interface {
	Apply(req *http.Request) error
}

// Client executes API calls end-to-end: attach auth, send, retry transient
// failures on idempotent methods, classify the response.
type Client struct {
	baseURL    string
	apiBase    string
	httpClient HTTPClient
	auth       Authenticator
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	timeout  time.Duration
	retryCfg retry.Config

	// Resource services.
	User         *UserService
	Sales        *SalesService
	Reports      *ReportsService
	Inventory    *InventoryService
	Costs        *CostsService
	Connections  *ConnectionsService
	SupplyChain  *SupplyChainService
	Warehouse    *WarehouseService
	Notification *NotificationsService
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Default 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets the total attempt budget and the backoff seed factor.
// maxRetries = 3 means one call plus up to two retries; backoffFactor 0.3
// yields delays of roughly 0.3s, 0.6s, 1.2s.
func WithRetry(maxRetries int, backoffFactor float64) Option {
	return func(c *Client) {
		c.retryCfg.MaxAttempts = maxRetries
		c.retryCfg.BackoffFactor = backoffFactor
	}
}

// WithMetrics records request counts, durations, and retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a SellerLegend API client. All authenticated calls go
// through auth; pass the oauth engine bound to this client's credential.
func NewClient(baseURL string, auth Authenticator, logger zerolog.Logger, opts ...Option) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	c := &Client{
		baseURL:  base,
		apiBase:  base + "/api/",
		auth:     auth,
		logger:   logger.With().Str("component", "sellerlegend").Logger(),
		timeout:  30 * time.Second,
		retryCfg: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	c.User = &UserService{client: c}
	c.Sales = &SalesService{client: c}
	c.Reports = &ReportsService{client: c}
	c.Inventory = &InventoryService{client: c}
	c.Costs = &CostsService{client: c}
	c.Connections = &ConnectionsService{client: c}
	c.SupplyChain = &SupplyChainService{client: c}
	c.Warehouse = &WarehouseService{client: c}
	c.Notification = &NotificationsService{client: c}
	return c
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) { c.httpClient = hc }

// BaseURL returns the instance base URL.
func (c *Client) BaseURL() string { return c.baseURL }

var idempotentMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Do executes one logical API call. params are cleaned per the shared
// contract (nil values dropped, slices comma-joined, everything else
// stringified); body is serialized as JSON for POST/PUT/PATCH. The decoded
// response body is returned for 2xx statuses; everything else surfaces as
// a typed APIError. Non-idempotent methods are never retried: retrying a
// write risks duplicate side effects.
func (c *Client) Do(ctx context.Context, method, path string, params map[string]any, body map[string]any, headers map[string]string) (map[string]any, error) {
	method = strings.ToUpper(method)
	ctx, _ = requestid.Ensure(ctx)
	fullURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	// Resolve the bearer header once, outside the retry loop: an invalid
	// credential will not become valid by retrying, and auth errors
	// propagate unchanged.
	probe, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if err := c.auth.Apply(probe); err != nil {
		return nil, err
	}
	authHeader := probe.Header.Get("Authorization")

	cfg := c.retryCfg
	if !idempotentMethods[method] {
		cfg.MaxAttempts = 1
	}

	start := time.Now()
	attempts := 0
	var result map[string]any
	err = retry.Do(ctx, cfg, func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			c.logger.Debug().Str("method", method).Str("path", path).Int("attempt", attempts).Msg("retrying request")
			if c.metrics != nil {
				c.metrics.RecordRetry(method)
			}
		}

		req, err := c.newRequest(ctx, method, fullURL, payload, authHeader, headers)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return classifyTransport(err, c.timeout)
		}
		defer resp.Body.Close()

		result, err = handleResponse(resp)
		return err
	})

	if c.metrics != nil {
		status := "ok"
		if err != nil {
			var apiErr *slerrors.APIError
			if errors.As(err, &apiErr) {
				status = apiErr.Kind.String()
			} else {
				status = "error"
			}
		}
		c.metrics.RecordRequest(method, status)
		c.metrics.ObserveDuration(method, time.Since(start).Seconds())
	}
	return result, err
}

// Get issues a GET request through the pipeline.
func (c *Client) Get(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, path, params, nil, nil)
}

// Post issues a POST request through the pipeline.
func (c *Client) Post(ctx context.Context, path string, body map[string]any, params map[string]any) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, path, params, body, nil)
}

// Put issues a PUT request through the pipeline.
func (c *Client) Put(ctx context.Context, path string, body map[string]any, params map[string]any) (map[string]any, error) {
	return c.Do(ctx, http.MethodPut, path, params, body, nil)
}

// Patch issues a PATCH request through the pipeline.
func (c *Client) Patch(ctx context.Context, path string, body map[string]any, params map[string]any) (map[string]any, error) {
	return c.Do(ctx, http.MethodPatch, path, params, body, nil)
}

// Delete issues a DELETE request through the pipeline.
func (c *Client) Delete(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, path, params, nil, nil)
}

// GetServiceStatus probes the API health-check endpoint. Operators use it
// as a liveness check; it flows through the same pipeline and error
// classification as every other call.
func (c *Client) GetServiceStatus(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "service-status", nil)
}

func (c *Client) buildURL(path string, params map[string]any) (string, error) {
	full := c.apiBase + strings.TrimPrefix(path, "/")
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("building URL for %q: %w", path, err)
	}
	if clean := cleanParams(params); len(clean) > 0 {
		q := u.Query()
		keys := make([]string, 0, len(clean))
		for k := range clean {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, clean[k])
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, payload []byte, authHeader string, headers map[string]string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("SellerLegend-Api-Version", apiVersion)
	req.Header.Set("X-Request-Id", requestid.FromContext(ctx))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// cleanParams strips nil values, joins list values with commas, and
// stringifies everything else. Every resource service relies on this one
// contract; it must behave identically for every call site.
func cleanParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	clean := make(map[string]string, len(params))
	for key, value := range params {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case []string:
			clean[key] = strings.Join(v, ",")
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			clean[key] = strings.Join(parts, ",")
		case string:
			clean[key] = v
		default:
			clean[key] = fmt.Sprint(v)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}

// handleResponse decodes the body and classifies the status. A body that is
// empty or not valid JSON is substituted with a generic message object
// rather than raising a parse error.
func handleResponse(resp *http.Response) (map[string]any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, slerrors.NewTransport(fmt.Sprintf("reading response body: %v", err), err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = "Unknown error"
		}
		data = map[string]any{"message": message}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	message, _ := data["message"].(string)
	if message == "" {
		message = "Unknown error"
	}
	return nil, slerrors.FromStatus(resp.StatusCode, message, data)
}

// classifyTransport wraps transport-level failures so raw transport errors
// never escape the client.
func classifyTransport(err error, timeout time.Duration) error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return slerrors.NewTransport(fmt.Sprintf("request timed out after %s", timeout), err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return slerrors.NewTransport(fmt.Sprintf("request timed out after %s", timeout), err)
	default:
		return slerrors.NewTransport(fmt.Sprintf("connection error: %v", err), err)
	}
}
