package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/clerk/pkg/openapi"
	"github.com/JaimeStill/clerk/pkg/routes"
)

func groups(domain *Domain) []routes.Group {
	return []routes.Group{
		domain.Categories.Handler().Routes(),
		domain.Letters.Handler().Routes(),
		domain.Replies.Handler().Routes(),
		domain.Questions.Handler().Routes(),
		domain.Prompts.Routes(),
	}
}

// registerRoutes mounts the domain routes and a generated OpenAPI document
// describing them at /openapi.json.
func registerRoutes(mux *http.ServeMux, domain *Domain, docs *openapi.Config, basePath, version string) error {
	gs := groups(domain)
	routes.Register(mux, gs...)

	spec := openapi.Build(docs, version, gs...)
	spec.AddServer(basePath)

	b, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(b))
	return nil
}
