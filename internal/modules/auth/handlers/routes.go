package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterPublicRoutes registers the routes reachable without a token
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/users", h.HandleRegister)
	r.Post("/sessions", h.HandleLogin)
}

// RegisterRoutes registers the routes that need an authenticated user
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/current", h.HandleCurrent)
}
