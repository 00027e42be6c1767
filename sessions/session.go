// Package sessions owns every read and write of client session state:
// the token pair, the cached identity, the theme preference and the
// anonymous recommender session id.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/storage"
	"github.com/jrsteele09/pcrs-client/token"
	"golang.org/x/oauth2"
)

// Fixed keys of the local store.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyRole         = "role"
	KeyUsername     = "username"
	KeyTheme        = "theme"
	KeySessionID    = "session_id"
)

var ErrNoSession = errors.ErrNoSession

// Tokens is the stored credential pair.
type Tokens struct {
	Access  string
	Refresh string
}

// Manager is the typed accessor over a storage.Store.
type Manager struct {
	store   storage.Store
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(store storage.Store, options ...ManagerOption) *Manager {
	m := &Manager{store: store}
	for _, opt := range options {
		opt(m)
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) Now() time.Time {
	return m.nowFunc()
}

// Tokens returns ErrNoSession when no access token is stored.
func (m *Manager) Tokens() (Tokens, error) {
	access, err := m.get(KeyAccessToken)
	if err != nil {
		return Tokens{}, err
	}
	if access == "" {
		return Tokens{}, ErrNoSession
	}
	refresh, err := m.get(KeyRefreshToken)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// SaveTokens writes the access token then the refresh token. An empty
// refresh leaves the stored one in place, since refresh responses may omit it.
func (m *Manager) SaveTokens(access, refresh string) error {
	if err := m.store.Set(KeyAccessToken, access); err != nil {
		return fmt.Errorf("[Manager.SaveTokens] access: %w", err)
	}
	if refresh == "" {
		return nil
	}
	if err := m.store.Set(KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("[Manager.SaveTokens] refresh: %w", err)
	}
	return nil
}

// SaveIdentity caches the role and username decoded from the access token.
func (m *Manager) SaveIdentity(claims token.Claims) error {
	if err := m.store.Set(KeyRole, claims.Role); err != nil {
		return fmt.Errorf("[Manager.SaveIdentity] role: %w", err)
	}
	if err := m.store.Set(KeyUsername, claims.Username); err != nil {
		return fmt.Errorf("[Manager.SaveIdentity] username: %w", err)
	}
	return nil
}

// Claims decodes the stored access token.
func (m *Manager) Claims() (token.Claims, error) {
	t, err := m.Tokens()
	if err != nil {
		return token.Claims{}, err
	}
	return token.Decode(t.Access)
}

func (m *Manager) Role() string {
	role, _ := m.get(KeyRole)
	return role
}

func (m *Manager) Username() string {
	username, _ := m.get(KeyUsername)
	return username
}

func (m *Manager) Theme() string {
	theme, _ := m.get(KeyTheme)
	if theme == "" {
		return "light"
	}
	return theme
}

func (m *Manager) SetTheme(theme string) error {
	return m.store.Set(KeyTheme, theme)
}

// AnonymousID returns the stored recommender session id, or "".
func (m *Manager) AnonymousID() string {
	id, _ := m.get(KeySessionID)
	return id
}

// EnsureAnonymousID returns the stored id, generating and persisting one
// when none exists.
func (m *Manager) EnsureAnonymousID() (string, bool, error) {
	if id := m.AnonymousID(); id != "" {
		return id, false, nil
	}
	id := uuid.New().String()
	if err := m.store.Set(KeySessionID, id); err != nil {
		return "", false, fmt.Errorf("[Manager.EnsureAnonymousID] %w", err)
	}
	return id, true, nil
}

// Clear removes the credentials and cached identity. Theme and the
// anonymous id are preferences, not credentials, and are kept.
func (m *Manager) Clear() error {
	if err := m.store.Delete(KeyAccessToken, KeyRefreshToken, KeyRole, KeyUsername); err != nil {
		return fmt.Errorf("[Manager.Clear] %w", err)
	}
	return nil
}

func (m *Manager) get(key string) (string, error) {
	v, err := m.store.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		if key == KeyAccessToken {
			return "", ErrNoSession
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("[Manager.get] %s: %w", key, err)
	}
	return v, nil
}

// TokenSource adapts the manager to oauth2.TokenSource so the HTTP client
// can set the bearer header. It never refreshes; see auth.Service.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

type tokenSource struct {
	m *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	t, err := ts.m.Tokens()
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{
		AccessToken:  t.Access,
		RefreshToken: t.Refresh,
		TokenType:    "Bearer",
	}
	if claims, err := token.Decode(t.Access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

type ctxKey struct{}

// NewContext carries a manager through a request context.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the manager stored by NewContext, if any.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	return m, ok
}
