package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/chart"
	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

type chartOptions struct {
	noInterpolation bool
	noScatter       bool
	fallbackZero    bool
}

// NewChartCmd creates the chart command
func NewChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print ERP series as tables",
	}
	cmd.AddCommand(newDepreciationChartCmd())
	return cmd
}

func newDepreciationChartCmd() *cobra.Command {
	opts := &chartOptions{}

	cmd := &cobra.Command{
		Use:   "depreciation <machine-id>",
		Short: "Show the actual and projected depreciation of a machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runDepreciationChart(cmd.Context(), a, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noInterpolation, "no-interpolation", false, "Leave gaps instead of interpolating missing values")
	cmd.Flags().BoolVar(&opts.noScatter, "no-scatter", false, "Do not mark interpolated values")
	cmd.Flags().BoolVar(&opts.fallbackZero, "fallback-zero", false, "Show missing values as 0")

	return routed(cmd, "/machines")
}

func runDepreciationChart(ctx context.Context, a *app.App, out io.Writer, machineID string, opts *chartOptions) error {
	points, err := a.Clients.Authenticated().DepreciationCurve(ctx, machineID)
	if err != nil {
		return app.Translate(err)
	}
	if len(points) == 0 {
		ui.Muted(out, "No depreciation data for machine %s", machineID)
		return nil
	}

	c := chart.DepreciationChart(points)
	c.Interpolation = !opts.noInterpolation
	c.ShowScatter = !opts.noScatter
	if opts.fallbackZero {
		c.Fallback = chart.Fallbacks()[1]
	}

	fmt.Fprintln(out, c.Table())
	return nil
}
