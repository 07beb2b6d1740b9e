package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/config"
	"github.com/minimalprod/erpctl/internal/cli/serverselect"
	"github.com/minimalprod/erpctl/internal/cli/userconfig"
)

// NewUseCmd creates the use command
func NewUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "use [url-or-alias]",
		Aliases: []string{"select-server"},
		Short:   "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ erpctl use                          # Interactive selection
  $ erpctl use http://localhost:8080    # Select by URL
  $ erpctl use production               # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runUse(cmd.OutOrStdout(), urlOrAlias)
		},
	}

	return standalone(cmd)
}

func runUse(out io.Writer, urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'erpctl init' to create a configuration file", err)
	}

	var server *config.Server
	if urlOrAlias != "" {
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
	} else {
		server, err = serverselect.PromptServerSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(out, "Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
