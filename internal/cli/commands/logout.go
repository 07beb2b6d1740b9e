package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runLogout(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func runLogout(ctx context.Context, a *app.App, out io.Writer) error {
	wasAuthenticated := a.Session.IsAuthenticated()

	if err := a.Session.Logout(ctx); err != nil {
		return err
	}

	if wasAuthenticated {
		ui.Success(out, "Logged out from %s", a.Server.URL)
	} else {
		ui.Muted(out, "Not logged in to %s", a.Server.URL)
	}
	return nil
}
