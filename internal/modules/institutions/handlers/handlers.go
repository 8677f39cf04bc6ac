// Package handlers provides HTTP handlers for institutions.
package handlers

import (
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/modules/institutions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles institution HTTP requests
type Handler struct {
	repo *institutions.Repository
	log  zerolog.Logger
}

// NewHandler creates a new institutions handler
func NewHandler(repo *institutions.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "institutions").Logger(),
	}
}

// HandleList handles GET /api/institutions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, list)
}

// HandleCreate handles POST /api/institutions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var inst domain.Institution
	if err := httputil.DecodeJSON(r, &inst); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	if err := h.repo.Create(r.Context(), inst); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, h.log, http.StatusCreated, inst)
}

// HandleReplace handles PUT /api/institutions/{code}
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var inst domain.Institution
	if err := httputil.DecodeJSON(r, &inst); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	if err := h.repo.Replace(r.Context(), code, inst); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, h.log, http.StatusOK, inst)
}

// HandleDelete handles DELETE /api/institutions/{code}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.repo.Delete(r.Context(), code); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
