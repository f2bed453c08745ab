package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/stackdock/internal/config"
	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/store"
)

// app is the engine wired from configuration for one command.
type app struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	return cfg, nil
}

// newLogger writes text logs to w at the configured level, or debug with
// --verbose, and installs the logger as the slog default.
func newLogger(opts *RootOptions, cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newGateway builds the gateway the configuration selects.
func newGateway(cfg config.GatewayConfig, logger *slog.Logger) gateway.Gateway {
	if cfg.Mode == config.ModeHTTP {
		return gateway.NewHTTPClient(cfg.URL, nil)
	}
	return gateway.NewSimulated(gateway.SimulatedConfig{
		MinLatency:  time.Duration(cfg.MinLatencyMS) * time.Millisecond,
		MaxLatency:  time.Duration(cfg.MaxLatencyMS) * time.Millisecond,
		FailureRate: cfg.FailureRate,
		Seed:        cfg.Seed,
	}, logger)
}

// openApp loads the configuration, opens the database and builds the
// engine. The engine is not initialized; callers decide whether to
// Initialize or Restore. Close releases the database.
func openApp(opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts, cfg, logOut)

	statusPolicy, ok := engine.ParseStatusPolicy(cfg.Engine.StatusPolicy)
	if !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown status policy %q", cfg.Engine.StatusPolicy))
	}
	conflictPolicy, ok := engine.ParseConflictPolicy(cfg.Engine.ConflictPolicy)
	if !ok {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown conflict policy %q", cfg.Engine.ConflictPolicy))
	}

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	eng := engine.New(newGateway(cfg.Gateway, logger), store.NewAdapter(st, logger),
		engine.WithLogger(logger),
		engine.WithStatusPolicy(statusPolicy),
		engine.WithConflictPolicy(conflictPolicy),
	)
	return &app{cfg: cfg, store: st, engine: eng, logger: logger}, nil
}

// openInitialized opens the app and loads the stored snapshot.
func openInitialized(ctx context.Context, opts *RootOptions, logOut io.Writer) (*app, error) {
	a, err := openApp(opts, logOut)
	if err != nil {
		return nil, err
	}
	a.engine.Initialize(ctx)
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}
