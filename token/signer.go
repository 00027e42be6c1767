package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs and verifies the dev backend's JWTs.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)
	// Keyfunc is handed to jwt.Parse.
	Keyfunc(token *jwt.Token) (any, error)
	Method() jwt.SigningMethod
}

// HMACSigner signs with HS256 and a shared secret.
type HMACSigner struct {
	secret []byte
}

var _ Signer = (*HMACSigner)(nil)

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(h.Method(), claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("[HMACSigner.Sign] %w", err)
	}
	return signed, nil
}

func (h *HMACSigner) Keyfunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("[HMACSigner.Keyfunc] unexpected signing method %v", t.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
