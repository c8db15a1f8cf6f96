package offline

import (
	"net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
)

// HeaderSource names the response header carrying the [Source] of every
// response served by [Cache.ServeHTTP].
const HeaderSource = "X-Offline-Source"

// ServeHTTP implements [http.Handler] on top of [Cache.Fetch].
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := c.Fetch(r.Context(), r)

	header := w.Header()
	for name, values := range cleanHeader(resp.Header) {
		header[name] = values
	}
	header.Set(HeaderSource, string(resp.Source))
	w.WriteHeader(resp.Status)

	if r.Method == http.MethodHead || len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Cache.ServeHTTP").Msg("error writing response")
	}
}
