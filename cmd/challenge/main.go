package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cormacgwin/goodwin-challenge/internal/cli"
	"github.com/cormacgwin/goodwin-challenge/internal/logger"
)

var version = "dev"

type commandLine struct {
	cli.Globals `embed:""`

	Version kong.VersionFlag `help:"Print the version and exit."`

	Serve         cli.ServeCmd         `cmd:"" default:"1" help:"Run the HTTP API (default)."`
	ResetPassword cli.ResetPasswordCmd `cmd:"" help:"Reset an account password."`
	ImportLegacy  cli.ImportLegacyCmd  `cmd:"" help:"Import a JSON export of the hosted backend."`
	Report        cli.ReportCmd        `cmd:"" help:"Print member standings as CSV."`
}

func newParser(root *commandLine, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("challenge"),
		kong.Description("Family habit challenge: stakes, streaks and team standings."),
		kong.UsageOnError(),
		kong.Vars{
			"version":         version,
			"default_db_path": cli.DefaultDBPath,
		},
	}, options...)
	return kong.New(root, options...)
}

func main() {
	var root commandLine
	parser, err := newParser(&root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := logger.Init(logger.Config{Level: root.LogLevel, File: root.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger init failed: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&cli.Context{
		Ctx:     context.Background(),
		Globals: &root.Globals,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}); err != nil {
		logger.Error("command failed", "command", ctx.Command(), "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
