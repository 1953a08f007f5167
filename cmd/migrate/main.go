package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/inspector/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "INSPECTOR_DB_DSN"

type options struct {
	dsn      string
	up       bool
	down     bool
	steps    int
	version  bool
	force    int
	forceSet bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := parseFlags()
	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.dsn, "dsn", "", "Database URL (defaults to INSPECTOR_DB_DSN, then the [database] config)")
	flag.BoolVar(&opts.up, "up", false, "Run all up migrations")
	flag.BoolVar(&opts.down, "down", false, "Run all down migrations")
	flag.IntVar(&opts.steps, "steps", 0, "Number of migrations (positive=up, negative=down)")
	flag.BoolVar(&opts.version, "version", false, "Print current migration version")
	flag.IntVar(&opts.force, "force", -1, "Force set version (use with caution)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forceSet = true
		}
	})
	return opts
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.URL(), nil
}

func run(opts options, logger *slog.Logger) error {
	if !opts.up && !opts.down && !opts.version && !opts.forceSet && opts.steps == 0 {
		fmt.Println("usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
		return nil
	}

	dsn, err := resolveDSN(opts.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("get version: %w", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
	case opts.forceSet:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		logger.Info("forced schema version", "version", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("up: %w", err)
		}
		logger.Info("migrations applied")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("down: %w", err)
		}
		logger.Info("migrations reverted")
	default:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("steps %d: %w", opts.steps, err)
		}
		logger.Info("migration steps applied", "steps", opts.steps)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
