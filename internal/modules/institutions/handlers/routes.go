package handlers

import (
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all institution routes. Writes are admin only.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/institutions", func(r chi.Router) {
		r.Get("/", h.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", h.HandleCreate)
			r.Put("/{code}", h.HandleReplace)
			r.Delete("/{code}", h.HandleDelete)
		})
	})
}
