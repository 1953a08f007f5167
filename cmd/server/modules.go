package main

import (
	"github.com/JaimeStill/inspector/internal/api"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
	"github.com/JaimeStill/inspector/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Router mounts every module next to the probe and metrics endpoints.
func (m *Modules) Router(infra *infrastructure.Infrastructure) (*module.Router, error) {
	router := module.NewRouter()
	router.Probes(infra.Lifecycle)
	router.Handle("GET /metrics", infra.Metrics.Handler())

	if err := router.Mount(m.API); err != nil {
		return nil, err
	}
	return router, nil
}
