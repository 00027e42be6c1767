package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/pcrs-client/server"
	"github.com/jrsteele09/pcrs-client/server/servertest"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	b := servertest.New(t, server.WithDemoData())
	t.Setenv("VITE_API_URL", b.URL)
	t.Setenv("PCRS_STORE_PATH", filepath.Join(t.TempDir(), "store.json"))
	t.Setenv("PCRS_LOG_LEVEL", "error")
}

// run executes one CLI invocation with a fresh command tree, as a shell
// would.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "whoami")
	require.ErrorContains(t, err, "not signed in")

	out, err := run(t, server.DemoVendorPassword+"\n", "login", "-u", server.DemoVendorUsername)
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as techparts (vendor)")

	out, err = run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "(vendor)")
	require.Contains(t, out, "theme:    light")

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "/signin")

	_, err = run(t, "", "whoami")
	require.ErrorContains(t, err, "not signed in")
}

func TestLogin_WrongPassword(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "login", "-u", servertest.AdminUsername, "-p", "wrong")
	require.EqualError(t, err, "invalid username or password")
}

func TestAdminCommandsAreGuarded(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "login", "-u", server.DemoCustomerUsername, "-p", server.DemoCustomerPassword)
	require.NoError(t, err)
	_, err = run(t, "", "vendors", "list")
	require.ErrorContains(t, err, "permission denied")

	_, err = run(t, "", "login", "-u", servertest.AdminUsername, "-p", servertest.AdminPassword)
	require.NoError(t, err)
	out, err := run(t, "", "vendors", "list")
	require.NoError(t, err)
	require.Contains(t, out, "TechParts Ltd")
	require.Contains(t, out, "page 1 of 1 (1 total)")
}

func TestOrdersFlow(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "login", "-u", server.DemoCustomerUsername, "-p", server.DemoCustomerPassword)
	require.NoError(t, err)
	out, err := run(t, "", "orders", "place", "--product", "5", "--quantity", "2")
	require.NoError(t, err)
	require.Contains(t, out, "total 238.00")

	out, err = run(t, "", "orders", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Vengeance 32GB DDR5")
	require.Contains(t, out, "+44 20 7946 0000")
}

func TestThemeAndSuggest(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "theme", "dark")
	require.NoError(t, err)
	require.Equal(t, "dark\n", out)

	_, err = run(t, "", "theme", "purple")
	require.Error(t, err)

	out, err = run(t, "", "suggest", "gef")
	require.NoError(t, err)
	require.Equal(t, "GeForce\n", out)
}

func TestRecommend(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "recommend", "--activity", "Gaming", "--also", "Streaming")
	require.NoError(t, err)
	require.Contains(t, out, "Ryzen 7 7800X3D")
	require.Contains(t, out, "GeForce RTX 4070")

	_, err = run(t, "", "recommend")
	require.ErrorContains(t, err, "primary_activity")
}
