package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/storage/storefake"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/stretchr/testify/require"
)

func TestManager_TokensLifecycle(t *testing.T) {
	store := storefake.NewFakeStore()
	m := sessions.NewManager(store)

	_, err := m.Tokens()
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, m.SaveTokens("a1", "r1"))
	tokens, err := m.Tokens()
	require.NoError(t, err)
	require.Equal(t, sessions.Tokens{Access: "a1", Refresh: "r1"}, tokens)

	// a refresh response without a new refresh token keeps the old one
	require.NoError(t, m.SaveTokens("a2", ""))
	tokens, err = m.Tokens()
	require.NoError(t, err)
	require.Equal(t, sessions.Tokens{Access: "a2", Refresh: "r1"}, tokens)
}

func TestManager_ClearKeepsPreferences(t *testing.T) {
	store := storefake.NewFakeStore()
	m := sessions.NewManager(store)

	require.NoError(t, m.SaveTokens("a1", "r1"))
	require.NoError(t, m.SaveIdentity(token.Claims{Role: "vendor", Username: "v1"}))
	require.NoError(t, m.SetTheme("dark"))
	id, created, err := m.EnsureAnonymousID()
	require.NoError(t, err)
	require.True(t, created)

	require.Equal(t, "vendor", m.Role())
	require.Equal(t, "v1", m.Username())

	require.NoError(t, m.Clear())

	keys, err := store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{sessions.KeyTheme, sessions.KeySessionID}, keys)
	require.Equal(t, "", m.Role())
	require.Equal(t, "dark", m.Theme())
	require.Equal(t, id, m.AnonymousID())
}

func TestManager_EnsureAnonymousIDIsStable(t *testing.T) {
	m := sessions.NewManager(storefake.NewFakeStore())

	first, created, err := m.EnsureAnonymousID()
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, first)

	second, created, err := m.EnsureAnonymousID()
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first, second)
}

func TestManager_TokenSource(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	issuer := token.NewIssuer(token.NewHMACSigner("s"), token.WithNowFunc(func() time.Time { return now }))
	pair, err := issuer.IssuePair(token.Subject{UserID: "1", Username: "u", Role: "user"})
	require.NoError(t, err)

	m := sessions.NewManager(storefake.NewFakeStore())
	_, err = m.TokenSource().Token()
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, m.SaveTokens(pair.Access, pair.Refresh))
	tok, err := m.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, pair.Access, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.Equal(t, now.Add(15*time.Minute).Unix(), tok.Expiry.Unix())
}

func TestContext(t *testing.T) {
	m := sessions.NewManager(storefake.NewFakeStore())
	ctx := sessions.NewContext(context.Background(), m)

	got, ok := sessions.FromContext(ctx)
	require.True(t, ok)
	require.Same(t, m, got)

	_, ok = sessions.FromContext(context.Background())
	require.False(t, ok)
}
