package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all account routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{code}", h.HandleGet)
		r.Put("/{code}", h.HandleReplace)
		r.Delete("/{code}", h.HandleDelete)
	})
}
