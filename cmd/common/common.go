package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"doc-search/config"
	"doc-search/service"
	"doc-search/telemetry"
)

// Engine reads the config flags, sets up logging and tracing, and bootstraps the search engine.
// The returned func flushes telemetry and must be called on exit.
func Engine(ctx *cli.Context) (*service.Engine, *slog.Logger, func(), error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := telemetry.NewLogger(ctx.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	shutdownTracing, err := telemetry.SetupTracing(cfg.Tracing, os.Stdout)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", slog.Any("error", err))
		}
	}

	engine, err := service.Bootstrap(ctx.Context, cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to start search engine: %w", err)
	}
	return engine, logger, cleanup, nil
}
