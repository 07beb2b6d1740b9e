package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/commands"
	"github.com/minimalprod/erpctl/internal/config"
	"github.com/minimalprod/erpctl/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the erpctl command tree
func NewRootCmd() *cobra.Command {
	var serverAlias string

	rootCmd := &cobra.Command{
		Use:   "erpctl",
		Short: "erpctl - command line client for the ERP",
		Long: `erpctl - command line client for the manufacturing and inventory ERP.

Log in once and query production orders, warehouses, incidents, depreciation
and cost reports from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd, args, serverAlias)
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverAlias, "server", "", "Server alias from erpctl.yaml (defaults to the selected server)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Annotations: map[string]string{
			commands.AnnotationStandalone: "true",
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "erpctl version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewUseCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewGetCmd())
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewChartCmd())
	rootCmd.AddCommand(commands.NewGraphQLCmd())
	rootCmd.AddCommand(commands.NewDashCmd())

	return rootCmd
}

// prepare loads the configuration, builds the app and enters the
// command's route, which runs the auth guard.
func prepare(cmd *cobra.Command, args []string, serverAlias string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if commands.IsStandalone(cmd) {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(cfg, app.Options{ServerAlias: serverAlias, Version: version}, log)
	if err != nil {
		return err
	}
	cmd.SetContext(app.NewContext(ctx, a))

	route, ok := commands.RouteFor(cmd, args)
	if !ok {
		return nil
	}
	log.Debug().Str("command", cmd.CommandPath()).Str("route", route).Msg("Entering route")
	return a.Enter(cmd.Context(), route)
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
