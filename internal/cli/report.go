package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cormacgwin/goodwin-challenge/internal/services"
)

// ReportCmd prints per-member standings as CSV, or the challenge summary as
// JSON with --summary.
type ReportCmd struct {
	Output  string `short:"o" help:"Write to this file instead of stdout."`
	Summary bool   `help:"Print the summary instead of per-member rows."`
}

func (cmd *ReportCmd) Run(ctx *Context) error {
	store, closeStore, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	output := ctx.stdout()
	if path := strings.TrimSpace(cmd.Output); path != "" && path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer file.Close()
		output = file
	}

	reports := services.NewReportService(store, ctx.Globals.Location(), ctx.Now)
	if cmd.Summary {
		summary, err := reports.BuildSummary(ctx.runContext())
		if err != nil {
			return fmt.Errorf("build summary: %w", err)
		}
		return writeJSON(output, summary)
	}

	rows, err := reports.BuildRows(ctx.runContext())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	return services.WriteReportCSV(output, rows)
}

func writeJSON(output io.Writer, value any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
