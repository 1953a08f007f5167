// Package infrastructure wires the shared systems every domain module needs:
// the logger, PostgreSQL, blob storage for attachments, mail delivery for
// summaries, and the Prometheus registry.
package infrastructure

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/lifecycle"
	"github.com/JaimeStill/inspector/pkg/mail"
	"github.com/JaimeStill/inspector/pkg/metrics"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Mail      mail.System
	Metrics   *metrics.Metrics
}

// New constructs every system without contacting any backend. Connections
// are verified by the startup hooks Start registers.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := cfg.Logging.Logger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init storage: %w", err), db.Connection().Close())
	}

	m, err := metrics.New()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init metrics: %w", err), db.Connection().Close())
	}
	if err := m.WatchDB(db.Connection(), cfg.Database.Name); err != nil {
		return nil, errors.Join(err, db.Connection().Close())
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Mail:      mail.New(&cfg.Mail, logger),
		Metrics:   m,
	}, nil
}

// Start registers each system's startup and shutdown hooks in dependency order.
func (i *Infrastructure) Start() error {
	systems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
		{"mail", i.Mail.Start},
	}

	for _, s := range systems {
		if err := s.start(i.Lifecycle); err != nil {
			return fmt.Errorf("start %s: %w", s.name, err)
		}
	}
	return nil
}
