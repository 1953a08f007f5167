package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/inspector/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := cfg.Logging.Logger(os.Stderr)
	logger.Info(
		"inspector starting",
		"version", cfg.Version,
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"log_level", cfg.Logging.Level,
	)

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("server init failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.ShutdownTimeoutDuration()); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("inspector stopped")
	return nil
}
