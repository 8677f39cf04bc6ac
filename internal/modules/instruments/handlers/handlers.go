// Package handlers provides HTTP handlers for instruments.
package handlers

import (
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles instrument HTTP requests
type Handler struct {
	service *instruments.Service
	log     zerolog.Logger
}

// NewHandler creates a new instruments handler
func NewHandler(service *instruments.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "instruments").Logger(),
	}
}

// HandleList handles GET /api/instruments?type=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter *domain.InstrumentType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := domain.InstrumentType(raw)
		if !t.Valid() {
			httputil.WriteError(w, r, h.log, domain.Validationf("unknown instrument type %q", raw))
			return
		}
		filter = &t
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, list)
}

// HandleGet handles GET /api/instruments/{code}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	instrument, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, instrument)
}

// HandleCreate handles POST /api/instruments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.InstrumentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	instrument, err := h.service.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusCreated, instrument)
}

// HandleReplace handles PUT /api/instruments/{code}
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var in domain.InstrumentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	instrument, err := h.service.Replace(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, instrument)
}

// HandleDelete handles DELETE /api/instruments/{code}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
