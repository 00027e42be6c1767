// Package token decodes PCRS access tokens on the client and, for the
// development backend, issues and verifies them.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims is the subset of a PCRS JWT the client cares about.
type Claims struct {
	TokenType Type      `json:"token_type"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ID        string    `json:"jti"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Expired reports whether the token has expired at now. A token without an
// exp claim never expires.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// Decode parses a JWT without verifying its signature. The client cannot
// verify signatures; it only needs exp and role to decide what to do next.
func Decode(rawToken string) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, fmt.Errorf("[token.Decode] empty token")
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("[token.Decode] %w", err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("[token.Decode] error extracting claims")
	}
	return claimsFromMap(mc), nil
}

func claimsFromMap(mc jwt.MapClaims) Claims {
	c := Claims{
		TokenType: Type(stringClaim(mc, "token_type")),
		UserID:    stringClaim(mc, "user_id"),
		Username:  stringClaim(mc, "username"),
		Role:      stringClaim(mc, "role"),
		ID:        stringClaim(mc, "jti"),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c
}

// stringClaim tolerates numeric ids, which some backends emit for user_id.
func stringClaim(mc jwt.MapClaims, name string) string {
	switch v := mc[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
