package guard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/guard"
	pcrserrors "github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/storage/storefake"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/stretchr/testify/require"
)

// countingRefresher records calls and answers with a fixed result.
type countingRefresher struct {
	calls  int
	claims token.Claims
	err    error
}

func (r *countingRefresher) Refresh(context.Context) (token.Claims, error) {
	r.calls++
	return r.claims, r.err
}

type fixture struct {
	now    time.Time
	issuer *token.Issuer
	sm     *sessions.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Unix(1_700_000_000, 0)}
	f.issuer = token.NewIssuer(token.NewHMACSigner("secret"),
		token.WithTokenExpiry(time.Minute, time.Hour),
		token.WithNowFunc(func() time.Time { return f.now }),
	)
	f.sm = sessions.NewManager(storefake.NewFakeStore(), sessions.WithNowFunc(func() time.Time { return f.now }))
	return f
}

func (f *fixture) signIn(t *testing.T, role users.Role) {
	t.Helper()
	pair, err := f.issuer.IssuePair(token.Subject{UserID: "1", Username: "someone", Role: role.String()})
	require.NoError(t, err)
	claims, err := token.Decode(pair.Access)
	require.NoError(t, err)
	require.NoError(t, f.sm.SaveTokens(pair.Access, pair.Refresh))
	require.NoError(t, f.sm.SaveIdentity(claims))
}

func TestCheck_NoSession(t *testing.T) {
	f := newFixture(t)
	refresher := &countingRefresher{}

	state := guard.New(f.sm, refresher).Check(context.Background())
	require.Equal(t, guard.Unauthorized, state)
	require.Equal(t, "/signin", state.Redirect())
	require.Zero(t, refresher.calls)
}

func TestCheck_Roles(t *testing.T) {
	tests := []struct {
		name    string
		role    users.Role
		allowed []users.Role
		want    guard.State
	}{
		{"any role", users.RoleUser, nil, guard.Authorized},
		{"allowed role", users.RoleVendor, []users.Role{users.RoleVendor}, guard.Authorized},
		{"one of several", users.RoleAdmin, []users.Role{users.RoleVendor, users.RoleAdmin}, guard.Authorized},
		{"wrong role", users.RoleUser, []users.Role{users.RoleAdmin}, guard.Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.signIn(t, tt.role)
			refresher := &countingRefresher{}

			require.Equal(t, tt.want, guard.New(f.sm, refresher, tt.allowed...).Check(context.Background()))
			require.Zero(t, refresher.calls)
		})
	}
	require.Equal(t, "/403", guard.Forbidden.Redirect())
	require.Equal(t, "", guard.Authorized.Redirect())
}

func TestCheck_ExpiredTokenRefreshesOnce(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, users.RoleVendor)
	f.now = f.now.Add(2 * time.Minute)

	refresher := &countingRefresher{claims: token.Claims{Role: "vendor", ExpiresAt: f.now.Add(time.Minute)}}
	g := guard.New(f.sm, refresher, users.RoleVendor)
	require.Equal(t, guard.Authorized, g.Check(context.Background()))
	require.Equal(t, 1, refresher.calls)
}

func TestCheck_FailedRefreshIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, users.RoleAdmin)
	f.now = f.now.Add(2 * time.Minute)

	refresher := &countingRefresher{err: errors.New("refresh rejected")}
	g := guard.New(f.sm, refresher, users.RoleAdmin)
	require.Equal(t, guard.Unauthorized, g.Check(context.Background()))
	require.Equal(t, 1, refresher.calls)

	err := g.Require(context.Background())
	require.ErrorIs(t, err, pcrserrors.ErrUnauthorized)
	require.Equal(t, 2, refresher.calls)
}

func TestRequire_Forbidden(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, users.RoleUser)

	err := guard.New(f.sm, nil, users.RoleAdmin).Require(context.Background())
	require.ErrorIs(t, err, pcrserrors.ErrForbidden)
}
