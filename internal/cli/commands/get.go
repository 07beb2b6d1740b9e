package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/erp"
)

// NewGetCmd creates the get command
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <resource> [id]",
		Short: "Fetch a collection or a single item of an ERP resource",
		Long: `Fetch a collection or a single item of an ERP resource and print it as JSON.

Examples:
  $ erpctl get machines
  $ erpctl get incidents 42
  $ erpctl get dashboard`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return erp.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			id := ""
			if len(args) > 1 {
				id = args[1]
			}
			return runGet(cmd.Context(), a, cmd.OutOrStdout(), args[0], id)
		},
	}
	return routed(cmd, "/"+routeParam)
}

func runGet(ctx context.Context, a *app.App, out io.Writer, name, id string) error {
	resource, err := erp.Lookup(name)
	if err != nil {
		return err
	}

	c := a.Clients.Authenticated()

	var v any
	if id == "" {
		v, err = c.ListResource(ctx, resource)
	} else {
		v, err = c.GetResource(ctx, resource, id)
	}
	if err != nil {
		return app.Translate(err)
	}

	return printJSON(out, v)
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
