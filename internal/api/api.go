// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/clerk/internal/config"
	"github.com/JaimeStill/clerk/internal/infrastructure"
	"github.com/JaimeStill/clerk/pkg/middleware"
	"github.com/JaimeStill/clerk/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// With auth enabled the issuer is discovered here, so startup fails fast on
// a misconfigured issuer.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, &cfg.API.OpenAPI, cfg.API.BasePath, cfg.Version); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.NewMetrics(runtime.Registry).Handler())
	m.Use(middleware.MaxBytes(cfg.API.MaxBodySizeBytes()))

	if cfg.Auth.Enabled {
		verifier, err := middleware.NewOIDCVerifier(infra.Lifecycle.Context(), &cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth init failed: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	return m, nil
}
