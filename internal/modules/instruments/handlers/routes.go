package handlers

import (
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all instrument routes. Writes are admin only.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/instruments", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{code}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", h.HandleCreate)
			r.Put("/{code}", h.HandleReplace)
			r.Delete("/{code}", h.HandleDelete)
		})
	})
}
