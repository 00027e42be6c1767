// Package servertest starts the development backend on an httptest server
// and builds SDK pieces pointed at it.
package servertest

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/storage/storefake"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	fakeuserrepo "github.com/jrsteele09/pcrs-client/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	AdminUsername = "admin"
	AdminPassword = "Admin12345"
	JobDelay      = 20 * time.Millisecond
)

type Backend struct {
	*httptest.Server
	Dev      *server.Server
	Accounts *fakeuserrepo.FakeUserRepo
	Config   config.Config
}

// New starts a backend with a known admin password and a short job delay.
// Extra options are applied after those defaults.
func New(t testing.TB, opts ...server.Option) *Backend {
	t.Helper()
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	accounts := fakeuserrepo.NewFakeUserRepo()
	opts = append([]server.Option{
		server.WithAdminPassword(AdminPassword),
		server.WithJobDelay(JobDelay),
	}, opts...)
	dev, err := server.New(cfg, server.NewInMemoryRepos(accounts), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(dev)
	t.Cleanup(func() {
		ts.Close()
		require.NoError(t, dev.Close())
	})
	return &Backend{Server: ts, Dev: dev, Accounts: accounts, Config: cfg}
}

// Conn is one client's view of the backend: its own session store and
// query cache, built with opts.
type Conn struct {
	Sessions *sessions.Manager
	HTTP     *httpclient.Client
	Queries  *cache.QueryClient
}

func (b *Backend) Connect(t testing.TB, opts ...cache.Option) *Conn {
	t.Helper()
	sm := sessions.NewManager(storefake.NewFakeStore())
	queries := cache.NewQueryClient(opts...)
	t.Cleanup(queries.WaitEvents)
	return &Conn{
		Sessions: sm,
		HTTP:     httpclient.New(b.URL, httpclient.WithTokenSource(sm.TokenSource())),
		Queries:  queries,
	}
}

// SignIn mints tokens for the named account straight from the issuer and
// stores them in c, skipping the password round trip.
func (b *Backend) SignIn(t testing.TB, c *Conn, username string) {
	t.Helper()
	account, err := b.Accounts.GetByUsername(username)
	require.NoError(t, err)
	pair, err := b.Dev.Issuer().IssuePair(token.Subject{
		UserID:   strconv.Itoa(account.ID),
		Username: account.Username,
		Role:     account.Role.String(),
	})
	require.NoError(t, err)
	claims, err := token.Decode(pair.Access)
	require.NoError(t, err)
	require.NoError(t, c.Sessions.SaveTokens(pair.Access, pair.Refresh))
	require.NoError(t, c.Sessions.SaveIdentity(claims))
}

// CreateAccount stores an account with the given role directly in the repo.
func (b *Backend) CreateAccount(t testing.TB, profile users.Profile, password string) *users.Account {
	t.Helper()
	hash, err := users.HashPassword(password)
	require.NoError(t, err)
	account := &users.Account{Profile: profile, PasswordHash: hash}
	require.NoError(t, b.Accounts.Upsert(account))
	return account
}
