package api

import (
	"time"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
	"github.com/JaimeStill/inspector/internal/sessions"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

// Runtime is the infrastructure as seen by the API module: the same systems
// with a module-scoped logger, plus the settings domain systems read.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Sessions      sessions.Config
	MaxUploadSize int64
	QueryTimeout  time.Duration
}

func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Sessions:       cfg.Sessions,
		MaxUploadSize:  cfg.API.MaxUploadSizeBytes(),
		QueryTimeout:   infra.Database.QueryTimeout(),
	}
}
