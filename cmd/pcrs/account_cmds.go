package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("password is required: %w", err)
				}
			}
			claims, err := a.client.Auth.Login(cmd.Context(), username, password)
			if errors.Is(err, errors.ErrInvalidCredentials) {
				return fmt.Errorf("invalid username or password")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", claims.Username, claims.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return line, nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := a.client.Auth.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed out. Next: %s\n", next)
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var reg users.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.client.Auth.Register(cmd.Context(), reg)
			if err != nil {
				return fieldError(err)
			}
			fmt.Fprintf(a.out, "Registered %s. Run `pcrs login -u %s` to sign in.\n", profile.Username, profile.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	return cmd
}

// fieldError flattens a field-error map, local or from the server, into one
// readable error.
func fieldError(err error) error {
	if fields := httpclient.FieldErrorsOf(err); len(fields) > 0 {
		return fmt.Errorf("invalid input: %s", fields)
	}
	return err
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in account",
		PreRunE: a.guarded(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Warmup(cmd.Context()); err != nil {
				return err
			}
			profile, err := a.client.Auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", profile.DisplayName(), profile.Role)
			fmt.Fprintf(a.out, "username: %s\nemail:    %s\ntheme:    %s\n", profile.Username, profile.Email, a.client.Sessions.Theme())
			return nil
		},
	}
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Show the signed-in profile",
		PreRunE: a.guarded(),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.client.Auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			a.printProfile(profile)
			return nil
		},
	}

	var update users.ProfileUpdate
	updateCmd := &cobra.Command{
		Use:     "update",
		Short:   "Change profile fields",
		PreRunE: a.guarded(),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.client.Auth.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return fieldError(err)
			}
			a.printProfile(profile)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&update.Email, "email", "", "email address")
	updateCmd.Flags().StringVar(&update.FirstName, "first-name", "", "first name")
	updateCmd.Flags().StringVar(&update.LastName, "last-name", "", "last name")
	updateCmd.Flags().StringVar(&update.Phone, "phone", "", "phone number")
	updateCmd.Flags().StringVar(&update.Address, "address", "", "postal address")
	updateCmd.Flags().StringVar(&update.CompanyName, "company", "", "company name (vendors)")
	cmd.AddCommand(updateCmd)
	return cmd
}

func (a *app) printProfile(p users.Profile) {
	a.table("FIELD\tVALUE", func(w io.Writer) {
		fmt.Fprintf(w, "username\t%s\n", p.Username)
		fmt.Fprintf(w, "email\t%s\n", p.Email)
		fmt.Fprintf(w, "name\t%s\n", p.DisplayName())
		fmt.Fprintf(w, "role\t%s\n", p.Role)
		if p.CompanyName != "" {
			fmt.Fprintf(w, "company\t%s\n", p.CompanyName)
		}
		if p.Phone != "" {
			fmt.Fprintf(w, "phone\t%s\n", p.Phone)
		}
	})
}

func (a *app) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the display theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.client.Sessions.SetTheme(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(a.out, a.client.Sessions.Theme())
			return nil
		},
	}
}
