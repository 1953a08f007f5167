// Package api builds the /api module: it wires the inspection domain systems
// onto the shared infrastructure, registers their routes and the OpenAPI
// document, and wraps the mux in CORS, request logging, and metrics.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
	"github.com/JaimeStill/inspector/pkg/middleware"
	"github.com/JaimeStill/inspector/pkg/module"
)

func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	if err := domain.Sessions.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("start sessions: %w", err)
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		runtime.Metrics.Middleware(),
	)

	runtime.Logger.Info("api module ready", "base_path", cfg.API.BasePath, "max_upload_size", cfg.API.MaxUploadSize)
	return m, nil
}
