package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
)

// NewGraphQLCmd creates the graphql command
func NewGraphQLCmd() *cobra.Command {
	var vars map[string]string

	cmd := &cobra.Command{
		Use:   "graphql <query>",
		Short: "Run a GraphQL query or mutation against the ERP",
		Long: `Run a GraphQL query or mutation and print the "data" member as JSON.

Examples:
  $ erpctl graphql '{ bodegas { id nombre } }'
  $ erpctl graphql 'mutation($n: String!) { createBodega(nombre: $n) { id } }' --var n=Central`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runGraphQL(cmd.Context(), a, cmd.OutOrStdout(), args[0], vars)
		},
	}

	cmd.Flags().StringToStringVar(&vars, "var", nil, "Query variable as name=value (repeatable)")

	return routed(cmd, "/graphql")
}

func runGraphQL(ctx context.Context, a *app.App, out io.Writer, query string, vars map[string]string) error {
	var variables map[string]any
	if len(vars) > 0 {
		variables = make(map[string]any, len(vars))
		for k, v := range vars {
			variables[k] = v
		}
	}

	var data json.RawMessage
	if err := a.Clients.Authenticated().GraphQL(ctx, query, variables, &data); err != nil {
		return app.Translate(err)
	}
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return printJSON(out, data)
}
