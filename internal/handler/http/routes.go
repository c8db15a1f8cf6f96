package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, withLogging)

	// local sync API
	router.Group(func(r chi.Router) {
		r.Use(withGZip)
		r.Get("/_sync/version", h.getVersion)
		r.Get("/_sync/status", h.getStatus)

		r.Post("/_sync/mutations/{entity}", h.createRecord)
		r.Put("/_sync/mutations/{entity}", h.editRecord)
		r.Delete("/_sync/mutations/{entity}", h.deleteRecord)
		r.Put("/_sync/settings/{section}", h.saveSettings)

		r.Get("/_sync/stores/{store}", h.listRecords)
		r.Get("/_sync/stores/{store}/{key}", h.getRecord)

		r.Group(func(r chi.Router) {
			r.Use(h.withToken)
			r.Post("/_sync/push", h.push)
			r.Post("/_sync/pull", h.pull)
			r.Post("/_sync/errors/flush", h.flushErrors)
		})
	})

	// everything else goes through the offline cache
	if h.offline != nil {
		router.Handle("/*", h.offline)
	}

	router.MethodNotAllowed(notFoundOnWrongMethod(router))

	return router
}
