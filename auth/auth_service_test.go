package auth_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/pcrs-client/auth"
	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/server/servertest"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, opts ...server.Option) (*auth.Service, *servertest.Conn, *servertest.Backend) {
	t.Helper()
	b := servertest.New(t, opts...)
	c := b.Connect(t)
	svc, err := auth.NewService(c.HTTP, c.Sessions, c.Queries)
	require.NoError(t, err)
	return svc, c, b
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(nil, nil, nil)
	require.Error(t, err)
}

func TestLogin_StoresTokensAndIdentity(t *testing.T) {
	svc, c, _ := newService(t, server.WithDemoData())
	ctx := context.Background()

	claims, err := svc.Login(ctx, server.DemoVendorUsername, server.DemoVendorPassword)
	require.NoError(t, err)
	require.Equal(t, "vendor", claims.Role)

	tokens, err := c.Sessions.Tokens()
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Access)
	require.NotEmpty(t, tokens.Refresh)
	require.Equal(t, "vendor", c.Sessions.Role())
	require.Equal(t, server.DemoVendorUsername, c.Sessions.Username())

	// vendors read their profile from /vendor/profile/
	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "TechParts Ltd", profile.CompanyName)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, c, _ := newService(t)

	_, err := svc.Login(context.Background(), servertest.AdminUsername, "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = c.Sessions.Tokens()
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestLogin_MissingFieldsNeverReachTheServer(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Login(context.Background(), "", "")
	require.Equal(t, "This field is required.", httpclient.FieldErrorsOf(err)["username"])
}

func TestLogin_InvalidatesPreviousProfile(t *testing.T) {
	svc, c, _ := newService(t, server.WithDemoData())
	ctx := context.Background()

	_, err := svc.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
	require.NoError(t, err)
	_, err = svc.Profile(ctx)
	require.NoError(t, err)

	_, err = svc.Login(ctx, server.DemoCustomerUsername, server.DemoCustomerPassword)
	require.NoError(t, err)
	stale, err := c.Queries.IsStale(ctx, auth.ProfileKey)
	require.NoError(t, err)
	require.True(t, stale)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, server.DemoCustomerUsername, profile.Username)
}

func TestRegister(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, users.Registration{Username: "newbie", Email: "newbie@example.com", Password: "Newbie123"})
	require.NoError(t, err)
	require.Equal(t, users.RoleUser, profile.Role)

	_, err = svc.Register(ctx, users.Registration{Username: "newbie", Email: "newbie@example.com", Password: "Newbie123"})
	require.True(t, httpclient.IsValidation(err))
	require.Contains(t, httpclient.FieldErrorsOf(err), "username")

	_, err = svc.Login(ctx, "newbie", "Newbie123")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, b := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, users.ProfileUpdate{Email: "not-an-email"})
	require.True(t, httpclient.IsValidation(err))

	updated, err := svc.UpdateProfile(ctx, users.ProfileUpdate{Phone: "0123"})
	require.NoError(t, err)
	require.Equal(t, "0123", updated.Phone)

	account, err := b.Accounts.GetByUsername(servertest.AdminUsername)
	require.NoError(t, err)
	require.Equal(t, "0123", account.Phone)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "0123", profile.Phone)
}

func TestRefresh(t *testing.T) {
	svc, c, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)

	_, err = svc.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
	require.NoError(t, err)
	claims, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)

	require.NoError(t, c.Sessions.SaveTokens("stale-access", "not-a-refresh-token"))
	_, err = svc.Refresh(ctx)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestLogout_KeepsPreferences(t *testing.T) {
	svc, c, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
	require.NoError(t, err)
	_, err = svc.Profile(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Sessions.SetTheme("dark"))

	next, err := svc.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, auth.SignInPath, next)
	require.Equal(t, "dark", c.Sessions.Theme())
	require.Empty(t, c.Sessions.Username())

	_, found, err := cache.GetQueryData[users.Profile](ctx, c.Queries, auth.ProfileKey)
	require.NoError(t, err)
	require.False(t, found)

	_, err = svc.Profile(ctx)
	require.ErrorIs(t, err, sessions.ErrNoSession)
}
