package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/pcrs-client/guard"
	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/internal/logging"
	"github.com/jrsteele09/pcrs-client/pcrs"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/spf13/cobra"
)

// app is the state shared by every command: the loaded configuration and
// the SDK client built from it.
type app struct {
	out    io.Writer
	opts   []pcrs.Option
	cfg    config.Config
	client *pcrs.Client
}

func newRootCmd(out io.Writer, opts ...pcrs.Option) *cobra.Command {
	a := &app{out: out, opts: opts}

	rootCmd := &cobra.Command{
		Use:           "pcrs",
		Short:         "PC recommendation and marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.client == nil {
				return nil
			}
			return a.client.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.out, a.cfg.GetAppName())
			return cmd.Help()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
		a.themeCmd(),
		a.vendorsCmd(),
		a.customersCmd(),
		a.productsCmd(),
		a.benchmarksCmd(),
		a.ordersCmd(),
		a.recommendCmd(),
		a.suggestCmd(),
	)

	return rootCmd
}

func (a *app) init(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.GetLogLevel(), cfg.GetLogFormat(), os.Stderr)
	client, err := pcrs.New(ctx, cfg, a.opts...)
	if err != nil {
		return err
	}
	a.cfg, a.client = cfg, client
	return nil
}

// guarded returns a PreRunE that refuses to run unless the session passes
// the role guard.
func (a *app) guarded(roles ...users.Role) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := a.client.Guard(roles...).Require(cmd.Context())
		switch {
		case errors.Is(err, errors.ErrUnauthorized):
			return fmt.Errorf("not signed in (%s): run `pcrs login`", guard.Unauthorized.Redirect())
		case errors.Is(err, errors.ErrForbidden):
			return fmt.Errorf("permission denied (%s): %s cannot run this command", guard.Forbidden.Redirect(), a.client.Sessions.Role())
		}
		return err
	}
}

func (a *app) table(header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
