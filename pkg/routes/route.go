// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route binds a method and a ServeMux pattern to a handler. Summary is
// optional and only feeds generated API documentation.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Summary string
}

// pattern returns the ServeMux pattern for r under prefix.
func (r Route) pattern(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
