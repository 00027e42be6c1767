package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrMissingTokenUser = errors.New("token has no user")
)

// Subject is who a token pair is issued for.
type Subject struct {
	UserID   string
	Username string
	Role     string
}

// Pair is the body returned by the token endpoints.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Issuer mints and verifies access/refresh JWTs. Refresh tokens rotate: a
// refresh token is revoked the first time it is exchanged.
type Issuer struct {
	signer             Signer
	rotated            *rotatedSet
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type IssuerOption func(*Issuer)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTokenExpiry = accessTokenExpiry
		i.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(signer Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		rotated: newRotatedSet(),
	}
	for _, opt := range options {
		opt(i)
	}
	if i.accessTokenExpiry == 0 {
		i.accessTokenExpiry = 15 * time.Minute
	}
	if i.refreshTokenExpiry == 0 {
		i.refreshTokenExpiry = 7 * 24 * time.Hour
	}
	if i.nowFunc == nil {
		i.nowFunc = time.Now
	}
	return i
}

func (i *Issuer) IssuePair(sub Subject) (Pair, error) {
	if sub.UserID == "" {
		return Pair{}, ErrMissingTokenUser
	}
	access, err := i.sign(sub, TypeAccess, i.accessTokenExpiry)
	if err != nil {
		return Pair{}, fmt.Errorf("[Issuer.IssuePair] access: %w", err)
	}
	refresh, err := i.sign(sub, TypeRefresh, i.refreshTokenExpiry)
	if err != nil {
		return Pair{}, fmt.Errorf("[Issuer.IssuePair] refresh: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (i *Issuer) Refresh(rawRefresh string) (Pair, error) {
	claims, err := i.Verify(rawRefresh, TypeRefresh)
	if err != nil {
		return Pair{}, fmt.Errorf("[Issuer.Refresh] %w", err)
	}
	if !i.rotated.rotate(claims.ID, claims.ExpiresAt, i.nowFunc()) {
		return Pair{}, fmt.Errorf("[Issuer.Refresh] %w", ErrTokenRevoked)
	}
	return i.IssuePair(Subject{UserID: claims.UserID, Username: claims.Username, Role: claims.Role})
}

// Verify checks signature, expiry, revocation and token type.
func (i *Issuer) Verify(rawToken string, want Type) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(rawToken, i.signer.Keyfunc,
		jwt.WithTimeFunc(i.nowFunc),
		jwt.WithValidMethods([]string{i.signer.Method().Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	claims := claimsFromMap(mc)
	if claims.TokenType != want {
		return Claims{}, ErrWrongTokenType
	}
	if claims.ID != "" && i.rotated.contains(claims.ID) {
		return Claims{}, ErrTokenRevoked
	}
	return claims, nil
}

func (i *Issuer) sign(sub Subject, typ Type, expiry time.Duration) (string, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"token_type": string(typ),
		"user_id":    sub.UserID,
		"username":   sub.Username,
		"role":       sub.Role,
		"iat":        now.Unix(),
		"exp":        now.Add(expiry).Unix(),
		"jti":        uuid.New().String(),
	}
	return i.signer.Sign(claims)
}
