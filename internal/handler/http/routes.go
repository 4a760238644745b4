package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	router.Route("/wa", func(r chi.Router) {
		r.Get("/events", h.streamEvents)
		r.Get("/status", h.getStatus)
		r.With(withGZip).Get("/history", h.getHistory)

		// control routes, guarded when a control token key is configured
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/restart", h.restart)
			r.Post("/logout", h.logout)
		})
	})

	router.Get("/api/version/", h.getServerVersion)

	if h.staticDir != "" {
		router.Get("/*", http.FileServer(http.Dir(h.staticDir)).ServeHTTP)
	}

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
