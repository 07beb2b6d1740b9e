package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/router"
	"github.com/minimalprod/erpctl/internal/cli/session"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// ErrLoginFailed is returned after a rejected login has been reported
var ErrLoginFailed = errors.New("login failed")

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the ERP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			user, pass, err := resolveCredentials(username, password, terminalCredentials{})
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, cmd.OutOrStdout(), user, pass)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set ERPCTL_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ERPCTL_PASSWORD, will prompt if not provided)")

	return routed(cmd, router.RouteLogin)
}

func runLogin(ctx context.Context, a *app.App, out io.Writer, username, password string) error {
	fmt.Fprintf(out, "Logging in to %s (%s)...\n", a.Server.Alias, a.Server.URL)

	if err := a.Session.Login(ctx, username, password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			ui.Error(out, "Invalid credentials")
			return ErrLoginFailed
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user := a.Session.User()
	ui.Success(out, "Login successful!")
	ui.Field(out, "User", user.Username)
	if len(user.Roles) > 0 {
		ui.Field(out, "Roles", strings.Join(user.Roles, ", "))
	}

	return a.Router.Navigate(ctx, router.RouteLanding)
}
