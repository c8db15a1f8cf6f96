package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// notFoundOnWrongMethod is the router's MethodNotAllowed handler. A known
// path requested with a method it does not serve is answered as if the
// path did not exist, so the local API never advertises its routes with a
// 405.
func notFoundOnWrongMethod(routes chi.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if routes.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			routes.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}
}
