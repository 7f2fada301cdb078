package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/db"
	"github.com/cormacgwin/goodwin-challenge/internal/logger"
)

// Globals are shared by every command and can come from flags or the
// environment.
type Globals struct {
	DBPath   string `name:"db-path" env:"DB_PATH" help:"SQLite database file." default:"${default_db_path}"`
	TZ       string `name:"tz" env:"TZ" help:"IANA time zone the challenge runs in." default:"UTC"`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" help:"Log level." enum:"debug,info,warn,error" default:"info"`
	LogFile  string `name:"log-file" env:"LOG_FILE" help:"Also write logs to this rotating file."`
}

// DefaultDBPath is bound to ${default_db_path} by the entrypoint.
var DefaultDBPath = filepath.Join("data", "challenge.db")

// Context is bound into every command's Run method.
type Context struct {
	Ctx     context.Context
	Globals *Globals
	Stdin   *os.File
	Stdout  io.Writer
	Now     func() time.Time
}

func (ctx *Context) now() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

func (ctx *Context) runContext() context.Context {
	if ctx.Ctx == nil {
		return context.Background()
	}
	return ctx.Ctx
}

func (ctx *Context) stdout() io.Writer {
	if ctx.Stdout == nil {
		return os.Stdout
	}
	return ctx.Stdout
}

// Location resolves TZ, falling back to UTC on unknown zone names.
func (globals *Globals) Location() *time.Location {
	name := strings.TrimSpace(globals.TZ)
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}

// openStore opens the database and returns the store with a closer.
func (ctx *Context) openStore() (*db.Store, func(), error) {
	database, err := db.OpenSQLite(ctx.Globals.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDatabase := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db.NewStore(database, ctx.Globals.Location(), ctx.Now), closeDatabase, nil
}
