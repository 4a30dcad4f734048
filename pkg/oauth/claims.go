package oauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of Laravel Passport JWT claims useful for reporting.
type Claims struct {
	Subject   string
	ClientID  string
	TokenID   string
	Scopes    []string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// TokenClaims decodes a Passport access token without verifying its
// signature. The instance signs tokens with its own key which clients do
// not hold; this is a diagnostic peek for token-info reporting, never an
// authenticity check.
func TokenClaims(raw string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	claims := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if aud, err := mc.GetAudience(); err == nil && len(aud) > 0 {
		claims.ClientID = aud[0]
	}
	if jti, ok := mc["jti"].(string); ok {
		claims.TokenID = jti
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = &exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = &iat.Time
	}
	if scopes, ok := mc["scopes"].([]any); ok {
		for _, s := range scopes {
			if scope, ok := s.(string); ok {
				claims.Scopes = append(claims.Scopes, scope)
			}
		}
	}
	return claims, nil
}
