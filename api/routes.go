package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a router serving the modem API under /api and a health
// check at /health.
func NewRouter(h *Handler, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/devices", h.ListDevices)

		r.Route("/sms", func(r chi.Router) {
			r.Get("/", h.ListMessages)
			r.Get("/count", h.GetMessageCount)
			r.Post("/delete", h.DeleteMessages)
			r.Delete("/{id}", h.DeleteMessage)
		})
	})

	return r
}
