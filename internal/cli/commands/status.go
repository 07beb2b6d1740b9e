package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			runStatus(a, cmd.OutOrStdout())
			return nil
		},
	}
}

func runStatus(a *app.App, out io.Writer) {
	ui.Field(out, "Server", a.Server.Alias+" ("+a.Server.URL+")")

	state := a.Session.Snapshot()
	if !state.IsAuthenticated {
		ui.Muted(out, "Not logged in")
		return
	}
	ui.Success(out, "Logged in as %s", state.User.Username)
}
