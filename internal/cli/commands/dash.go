package commands

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
)

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the ERP web interface in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runDash(a, cmd.OutOrStdout(), openBrowser)
		},
	}
}

func runDash(a *app.App, out io.Writer, open func(string) error) error {
	fmt.Fprintf(out, "Opening %s (%s)...\n", a.Server.Alias, a.Server.URL)

	if err := open(a.Server.URL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, a.Server.URL)
	}
	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
