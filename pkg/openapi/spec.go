package openapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JaimeStill/clerk/pkg/routes"
)

// Spec represents an OpenAPI 3.1 specification document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates a Spec with the given title, version, and default components.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

// AddServer appends a server URL to the spec.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// SetDescription sets the API description in the info object.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// Build creates a spec describing every route in groups.
func Build(cfg *Config, version string, groups ...routes.Group) *Spec {
	spec := NewSpec(cfg.Title, version)
	spec.SetDescription(cfg.Description)

	routes.Walk(func(path string, r routes.Route) {
		spec.AddOperation(r.Method, path, operationFor(r, path))
	}, groups...)

	return spec
}

// AddOperation sets op on path for method. Unsupported methods are ignored.
func (s *Spec) AddOperation(method, path string, op *Operation) {
	if path == "" {
		path = "/"
	}
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
	}

	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	default:
		return
	}
	s.Paths[path] = item
}

// MarshalJSON serializes the spec to indented JSON bytes.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

func operationFor(r routes.Route, path string) *Operation {
	summary := r.Summary
	if summary == "" {
		summary = r.Method + " " + path
	}

	params := pathParams(path)

	op := &Operation{
		Summary:    summary,
		Tags:       []string{tagOf(path)},
		Parameters: params,
		Responses:  map[int]*Response{},
	}

	switch r.Method {
	case http.MethodDelete:
		op.Responses[http.StatusNoContent] = &Response{Description: "Deleted"}
	case http.MethodPost, http.MethodPut:
		op.RequestBody = &RequestBody{
			Content: map[string]*MediaType{
				"application/json": {Schema: &Schema{Type: "object"}},
			},
		}
		op.Responses[http.StatusOK] = &Response{Description: "Success"}
		op.Responses[http.StatusConflict] = ResponseRef("Conflict")
	default:
		op.Responses[http.StatusOK] = &Response{Description: "Success"}
	}
	op.Responses[http.StatusBadRequest] = ResponseRef("BadRequest")
	op.Responses[http.StatusServiceUnavailable] = ResponseRef("Unavailable")
	if len(params) > 0 {
		op.Responses[http.StatusNotFound] = ResponseRef("NotFound")
	}
	return op
}

// pathParams returns a parameter for each {name} segment of path.
func pathParams(path string) []*Parameter {
	var out []*Parameter
	for seg := range strings.SplitSeq(path, "/") {
		if name, ok := strings.CutPrefix(seg, "{"); ok {
			name = strings.TrimSuffix(name, "}")
			out = append(out, PathParam(name))
		}
	}
	return out
}

func tagOf(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return seg
}

// ServeSpec returns a handler that serves pre-serialized JSON spec bytes.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}
