package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func newRouter(handler *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)

	r.Route("/health", func(r chi.Router) {
		r.Get("/check", handler.HealthCheck)
		r.Get("/infos", handler.HealthInfos)
	})
	r.Get("/version", handler.Version)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
