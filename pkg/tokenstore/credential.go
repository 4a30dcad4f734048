// Package tokenstore holds the bearer credential for a SellerLegend client.
package tokenstore

import (
	"sync"
	"time"
)

// ExpiryMargin is subtracted from the stored expiry when checking validity,
// so a token is never used within 30s of expiring mid-flight.
const ExpiryMargin = 30 * time.Second

// Credential is the single mutable token state owned by one client instance.
// A zero expiry means the token has no known expiry and is assumed valid
// indefinitely (externally supplied tokens).
type Credential struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	now func() time.Time
}

// New creates an empty credential.
func New() *Credential {
	return &Credential{now: time.Now}
}

// Info is a point-in-time snapshot of the credential state.
type Info struct {
	HasAccessToken   bool       `json:"has_access_token"`
	HasRefreshToken  bool       `json:"has_refresh_token"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsValid          bool       `json:"is_valid"`
	ExpiresInSeconds *int64     `json:"expires_in_seconds,omitempty"`
}

// IsValid reports whether the access token can still be presented. False if
// no access token is held; true if there is no expiry information; otherwise
// true iff now is strictly before expiry minus the safety margin.
func (c *Credential) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isValidLocked()
}

func (c *Credential) isValidLocked() bool {
	if c.accessToken == "" {
		return false
	}
	if c.expiresAt.IsZero() {
		return true
	}
	return c.now().Before(c.expiresAt.Add(-ExpiryMargin))
}

// Store records a token-endpoint response. The access token is overwritten
// unconditionally. The refresh token is overwritten only when the response
// carried one; client-credentials responses omit it and must not erase a
// refresh token obtained earlier. expiresIn <= 0 means the response carried
// no expiry and the previous expiry is discarded.
func (c *Credential) Store(accessToken, refreshToken string, expiresIn int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	if refreshToken != "" {
		c.refreshToken = refreshToken
	}
	if expiresIn > 0 {
		c.expiresAt = c.now().Add(time.Duration(expiresIn) * time.Second)
	} else {
		c.expiresAt = time.Time{}
	}
}

// Clear drops all token state. Called only when a refresh attempt is
// rejected, so subsequent calls fail deterministically instead of looping
// against a dead refresh token.
func (c *Credential) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
	c.expiresAt = time.Time{}
}

// SetAccessToken installs an externally obtained access token. expiresIn <= 0
// leaves the expiry unknown.
func (c *Credential) SetAccessToken(token string, expiresIn int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
	if expiresIn > 0 {
		c.expiresAt = c.now().Add(time.Duration(expiresIn) * time.Second)
	} else {
		c.expiresAt = time.Time{}
	}
}

// SetRefreshToken installs an externally obtained refresh token.
func (c *Credential) SetRefreshToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshToken = token
}

// AccessToken returns the held access token, if any.
func (c *Credential) AccessToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.accessToken != ""
}

// RefreshToken returns the held refresh token, if any.
func (c *Credential) RefreshToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken, c.refreshToken != ""
}

// Info returns a snapshot for status reporting.
func (c *Credential) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info := Info{
		HasAccessToken:  c.accessToken != "",
		HasRefreshToken: c.refreshToken != "",
		IsValid:         c.isValidLocked(),
	}
	if !c.expiresAt.IsZero() {
		at := c.expiresAt
		info.ExpiresAt = &at
		secs := int64(c.expiresAt.Sub(c.now()).Seconds())
		info.ExpiresInSeconds = &secs
	}
	return info
}
