// internal/component/dispatch.go
//
// Single mount point for every registered component.
//
// Context
// -------
// The root router mounts Handler at “/”.  Each request goes to the first
// component router that matches its method and path, in registration
// order; unmatched requests get 404.
//
// Notes
// -----
// • Routers are built once, when Handler is called.
// • Oxford commas, two spaces after periods.

package component

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler serves every component from one mount point.  Each request goes
// to the first component whose router matches method and path; chi
// refuses two Mount("/") calls on the same router, so components are not
// mounted individually.
func Handler(comps []Component) http.Handler {
	routers := make([]chi.Router, len(comps))
	for i, c := range comps {
		routers[i] = c.Routes()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
			path = rctx.RoutePath
		}
		for _, rt := range routers {
			if rt.Match(chi.NewRouteContext(), r.Method, path) {
				rt.ServeHTTP(w, r)
				return
			}
		}
		http.NotFound(w, r)
	})
}
