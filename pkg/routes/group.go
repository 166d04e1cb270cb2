package routes

import "net/http"

// Group collects routes under a shared prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.pattern(prefix), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}

// Walk calls fn for every route in groups with its full path.
func Walk(fn func(path string, r Route), groups ...Group) {
	for _, g := range groups {
		g.walk(fn, "")
	}
}

func (g Group) walk(fn func(string, Route), parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(fn, prefix)
	}
}
