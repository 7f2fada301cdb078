package cli

import (
	"fmt"
	"os"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
)

// ImportLegacyCmd loads a JSON export of the hosted backend into the local
// database. Running it twice leaves the same data behind.
type ImportLegacyCmd struct {
	File string `arg:"" type:"existingfile" help:"Path to the JSON export."`
}

func (cmd *ImportLegacyCmd) Run(ctx *Context) error {
	file, err := os.Open(cmd.File)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	store, closeStore, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	importer := services.NewLegacyImportService(store, ctx.Globals.Location())
	report, err := importer.Import(ctx.runContext(), file, ctx.now())
	if err != nil {
		return fmt.Errorf("import %s: %w", cmd.File, err)
	}

	logger.Info("legacy import finished", "file", cmd.File, "users", report.Users, "skipped", report.Skipped)
	fmt.Fprintf(ctx.stdout(), "Imported %d users, %d teams, %d habits, %d logs (%d records skipped)\n",
		report.Users, report.Teams, report.Habits, report.Logs, report.Skipped)
	return nil
}
