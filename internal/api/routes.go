package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/pkg/openapi"
	"github.com/JaimeStill/inspector/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Inspections.Handler().Routes(),
		domain.Catalog.Handler().Routes(),
		domain.Results.Handler(runtime.MaxUploadSize).Routes(),
		domain.Sessions.Handler().Routes(),
		domain.Summaries.Handler().Routes(),
		domain.Parts.Handler(runtime.MaxUploadSize).Routes(),
	}

	if err := routes.Register(mux, groups...); err != nil {
		return err
	}

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	cfg.API.OpenAPI.Apply(spec, cfg.API.BasePath)
	routes.Document(spec, "", groups...)

	specBytes, err := spec.Encode()
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
