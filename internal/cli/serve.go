package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/api"
	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const minSecretKeyLength = 32

var placeholderSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

var configValidator = validator.New()

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	Port         string        `env:"PORT" help:"TCP port to listen on." default:"8080"`
	Host         string        `env:"HOST" help:"Interface to bind." default:"0.0.0.0"`
	SecretKey    string        `name:"secret-key" env:"SECRET_KEY" help:"Session signing key, at least 32 characters."`
	CookieSecure bool          `name:"cookie-secure" env:"COOKIE_SECURE" help:"Mark session cookies Secure."`
	TimelineTick time.Duration `name:"timeline-tick" env:"TIMELINE_TICK" help:"Interval between timeline stream events." default:"1s"`
}

type serverConfig struct {
	Port         string        `validate:"required,numeric"`
	Host         string        `validate:"required"`
	SecretKey    string        `validate:"required,min=32"`
	DBPath       string        `validate:"required"`
	TimelineTick time.Duration `validate:"gt=0"`
}

func (cmd *ServeCmd) config(globals *Globals) (serverConfig, error) {
	secret, err := resolveSecretKey(cmd.SecretKey)
	if err != nil {
		return serverConfig{}, err
	}
	cfg := serverConfig{
		Port:         strings.TrimSpace(cmd.Port),
		Host:         strings.TrimSpace(cmd.Host),
		SecretKey:    secret,
		DBPath:       strings.TrimSpace(globals.DBPath),
		TimelineTick: cmd.TimelineTick,
	}
	if err := configValidator.Struct(cfg); err != nil {
		return serverConfig{}, fmt.Errorf("invalid server configuration: %w", err)
	}
	return cfg, nil
}

// resolveSecretKey rejects empty, placeholder and short keys.
func resolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, placeholder := placeholderSecretKeys[strings.ToLower(secret)]; placeholder {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

// newApp builds the fiber app with the middleware stack and routes.
func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Goodwin Challenge",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: logWriter{},
		Format: "${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(compress.New(compress.Config{
		// Compressing would buffer the event stream.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/stream")
		},
	}))

	api.RegisterRoutes(app, handler)
	return app
}

// logWriter sends fiber access log lines to the app logger.
type logWriter struct{}

func (logWriter) Write(line []byte) (int, error) {
	logger.Info(strings.TrimSpace(string(line)), "component", "http")
	return len(line), nil
}

func (cmd *ServeCmd) Run(ctx *Context) error {
	cfg, err := cmd.config(ctx.Globals)
	if err != nil {
		return err
	}
	location := ctx.Globals.Location()

	store, closeStore, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := api.NewHandler(api.Config{
		SecretKey:    cfg.SecretKey,
		Location:     location,
		CookieSecure: cmd.CookieSecure,
		TimelineTick: cfg.TimelineTick,
		Now:          ctx.Now,
	}, api.NewStoreDependencies(store, location, ctx.Now))
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler)

	sigCtx, stopSignals := signal.NotifyContext(ctx.runContext(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	address := cfg.Host + ":" + cfg.Port
	logger.Info("challenge server listening", "addr", address, "db", cfg.DBPath, "tz", location.String())
	if err := app.Listen(address); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
