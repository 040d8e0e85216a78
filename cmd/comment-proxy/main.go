package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nathantilsley/comment-proxy/internal/platform/config"
	"github.com/nathantilsley/comment-proxy/internal/platform/logger"
	"github.com/nathantilsley/comment-proxy/internal/platform/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	container, err := NewContainer(cfg, log, tel)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	return NewServer(container).Run()
}
