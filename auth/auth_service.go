// Package auth signs users in and out against the PCRS token endpoints and
// serves the signed-in user's profile.
package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
)

// Endpoint paths.
const (
	TokenPath    = "/token/"
	RefreshPath  = "/token/refresh"
	RegisterPath = "/register/"
)

// SignInPath is where an unauthenticated caller is sent.
const SignInPath = "/signin"

var (
	ErrInvalidCredentials  = errors.ErrInvalidCredentials
	ErrInvalidRefreshToken = errors.ErrInvalidRefreshToken
)

// ProfileKey is the cache key of the signed-in user's profile.
var ProfileKey = cache.NewKey("profile")

// Credentials is the body of POST /token/.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Service is the authentication and profile API.
type Service struct {
	client   *httpclient.Client
	sessions *sessions.Manager
	queries  *cache.QueryClient
}

// NewService requires all three dependencies.
func NewService(client *httpclient.Client, sm *sessions.Manager, queries *cache.QueryClient) (*Service, error) {
	if client == nil {
		return nil, errors.New("[auth.NewService] http client is required")
	}
	if sm == nil {
		return nil, errors.New("[auth.NewService] session manager is required")
	}
	if queries == nil {
		return nil, errors.New("[auth.NewService] query client is required")
	}
	return &Service{client: client, sessions: sm, queries: queries}, nil
}

// Login exchanges credentials for a token pair, stores both tokens and the
// decoded role and username, then drops every cached query so the next
// reads (profile included) fetch the new user's data. A 401 is
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (token.Claims, error) {
	creds := Credentials{Username: username, Password: password}
	if err := resource.Validate(creds); err != nil {
		return token.Claims{}, fmt.Errorf("[auth.Login] %w", err)
	}

	var pair token.Pair
	if err := s.client.Post(ctx, TokenPath, creds, &pair); err != nil {
		if httpclient.IsUnauthorized(err) {
			return token.Claims{}, fmt.Errorf("[auth.Login] %w", ErrInvalidCredentials)
		}
		return token.Claims{}, fmt.Errorf("[auth.Login] %w", err)
	}

	claims, err := s.store(pair)
	if err != nil {
		return token.Claims{}, fmt.Errorf("[auth.Login] %w", err)
	}
	if err := s.queries.Remove(ctx, cache.Key{}); err != nil {
		log.Warn().Err(err).Msg("dropping cached queries failed")
	}
	log.Debug().Str("username", claims.Username).Str("role", claims.Role).Msg("signed in")
	return claims, nil
}

// Register creates a storefront account. Field errors come back as a
// flattened map via httpclient.FieldErrorsOf.
func (s *Service) Register(ctx context.Context, reg users.Registration) (users.Profile, error) {
	if err := resource.Validate(reg); err != nil {
		return users.Profile{}, fmt.Errorf("[auth.Register] %w", err)
	}
	var profile users.Profile
	if err := s.client.Post(ctx, RegisterPath, reg, &profile); err != nil {
		return users.Profile{}, fmt.Errorf("[auth.Register] %w", err)
	}
	return profile, nil
}

// Profile returns the signed-in user's profile from the endpoint matching
// their role.
func (s *Service) Profile(ctx context.Context) (users.Profile, error) {
	if _, err := s.sessions.Tokens(); err != nil {
		return users.Profile{}, fmt.Errorf("[auth.Profile] %w", err)
	}
	path := s.role().ProfilePath()
	profile, err := cache.Fetch(ctx, s.queries, ProfileKey, func(ctx context.Context) (users.Profile, error) {
		var p users.Profile
		err := s.client.Get(ctx, path, nil, &p)
		return p, err
	})
	if err != nil {
		return users.Profile{}, fmt.Errorf("[auth.Profile] %w", err)
	}
	return profile, nil
}

// UpdateProfile PUTs the changes and invalidates the cached profile.
func (s *Service) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (users.Profile, error) {
	if err := resource.Validate(update); err != nil {
		return users.Profile{}, fmt.Errorf("[auth.UpdateProfile] %w", err)
	}
	var profile users.Profile
	if err := s.client.Put(ctx, s.role().ProfilePath(), update, &profile); err != nil {
		return users.Profile{}, fmt.Errorf("[auth.UpdateProfile] %w", err)
	}
	if err := s.queries.Invalidate(ctx, ProfileKey); err != nil {
		log.Warn().Err(err).Msg("profile invalidation failed")
	}
	return profile, nil
}

// Refresh exchanges the stored refresh token for a new access token and
// stores the result. It makes exactly one request and never retries.
func (s *Service) Refresh(ctx context.Context) (token.Claims, error) {
	tokens, err := s.sessions.Tokens()
	if err != nil {
		return token.Claims{}, fmt.Errorf("[auth.Refresh] %w", err)
	}
	if tokens.Refresh == "" {
		return token.Claims{}, fmt.Errorf("[auth.Refresh] %w", ErrInvalidRefreshToken)
	}

	var pair token.Pair
	if err := s.client.Post(ctx, RefreshPath, refreshRequest{Refresh: tokens.Refresh}, &pair); err != nil {
		if httpclient.IsUnauthorized(err) || httpclient.IsValidation(err) {
			return token.Claims{}, fmt.Errorf("[auth.Refresh] %w: %w", ErrInvalidRefreshToken, err)
		}
		return token.Claims{}, fmt.Errorf("[auth.Refresh] %w", err)
	}

	claims, err := s.store(pair)
	if err != nil {
		return token.Claims{}, fmt.Errorf("[auth.Refresh] %w", err)
	}
	return claims, nil
}

// Logout is local: it clears the stored credentials and every cached query,
// since orders, product lists and recommendations are scoped to the caller,
// and returns the sign-in location.
func (s *Service) Logout(ctx context.Context) (string, error) {
	if err := s.sessions.Clear(); err != nil {
		return "", fmt.Errorf("[auth.Logout] %w", err)
	}
	if err := s.queries.Remove(ctx, cache.Key{}); err != nil {
		return "", fmt.Errorf("[auth.Logout] %w", err)
	}
	return SignInPath, nil
}

func (s *Service) store(pair token.Pair) (token.Claims, error) {
	if pair.Access == "" {
		return token.Claims{}, errors.ErrInvalidToken
	}
	claims, err := token.Decode(pair.Access)
	if err != nil {
		return token.Claims{}, err
	}
	if err := s.sessions.SaveTokens(pair.Access, pair.Refresh); err != nil {
		return token.Claims{}, err
	}
	if err := s.sessions.SaveIdentity(claims); err != nil {
		return token.Claims{}, err
	}
	return claims, nil
}

func (s *Service) role() users.Role {
	if role, ok := users.ParseRole(s.sessions.Role()); ok {
		return role
	}
	return users.RoleUser
}
