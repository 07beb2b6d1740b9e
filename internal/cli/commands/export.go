package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/ui"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Download a report (PDF or spreadsheet) from the ERP",
		Long: `Download a report from the ERP and save it to a file.

Examples:
  $ erpctl export /api/reportes/costos-orden/pdf
  $ erpctl export /api/reportes/productividad/excel --out productividad.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), a, cmd.OutOrStdout(), args[0], outFile)
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (defaults to the name suggested by the server)")

	return routed(cmd, "/export")
}

func runExport(ctx context.Context, a *app.App, out io.Writer, reportPath, outFile string) error {
	payload, err := a.Clients.Authenticated().Download(ctx, reportPath)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", reportPath, app.Translate(err))
	}

	if outFile == "" {
		outFile = defaultOutFile(payload.Filename, reportPath)
	}

	if err := os.WriteFile(outFile, payload.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	ui.Success(out, "Saved %s (%d bytes)", outFile, len(payload.Data))
	return nil
}

// defaultOutFile names the download in the current directory: the
// server's suggestion if usable, else the last element of the report path.
func defaultOutFile(suggested, reportPath string) string {
	for _, name := range []string{suggested, path.Base(reportPath)} {
		name = filepath.Base(name)
		if name != "" && name != "." && name != ".." && name != string(filepath.Separator) {
			return name
		}
	}
	return "export"
}
