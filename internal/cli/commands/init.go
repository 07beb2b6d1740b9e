package commands

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/config"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <base-url>",
		Short: "Add an ERP server to erpctl.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), args[0], alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Server alias (defaults to production, then server-N)")

	return standalone(cmd)
}

func runInit(out io.Writer, baseURL, alias string) error {
	baseURL = strings.TrimRight(baseURL, "/")
	u, err := url.ParseRequestURI(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL '%s': expected http(s)://host[:port]", baseURL)
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{Servers: []config.Server{}}
		isNewConfig = true
	}

	if existing, err := cfg.GetServerByURL(baseURL); err == nil {
		fmt.Fprintf(out, "Server %s already exists in %s (%s)\n", baseURL, config.ConfigFileName, existing.Alias)
		return nil
	}

	if alias == "" {
		if len(cfg.Servers) == 0 {
			alias = "production"
		} else {
			alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
		}
	}

	cfg.AddServer(config.Server{Alias: alias, URL: baseURL})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		ui.Success(out, "Created ./%s with server %s (%s)", config.ConfigFileName, baseURL, alias)
	} else {
		ui.Success(out, "Added server %s (%s) to ./%s", baseURL, alias, config.ConfigFileName)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  Run 'erpctl login' to authenticate")

	return nil
}
