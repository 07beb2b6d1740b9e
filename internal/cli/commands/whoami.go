package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Verify the session with the server and show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
	return routed(cmd, "/me")
}

func runWhoami(ctx context.Context, a *app.App, out io.Writer) error {
	if !a.Session.CheckAuth(ctx) {
		return app.ErrLoginRequired
	}

	user := a.Session.User()
	fmt.Fprintln(out, user.Username)
	if len(user.Roles) > 0 {
		ui.Field(out, "Roles", strings.Join(user.Roles, ", "))
	}
	for _, p := range user.Policies {
		ui.Field(out, "Policy", p.Tag+":"+p.Permission)
	}
	return nil
}
