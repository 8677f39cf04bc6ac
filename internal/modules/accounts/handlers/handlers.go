// Package handlers provides HTTP handlers for the current user's accounts.
package handlers

import (
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/modules/accounts"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles account HTTP requests
type Handler struct {
	service *accounts.Service
	log     zerolog.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(service *accounts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleList handles GET /api/accounts?type=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var filter *domain.AccountType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := domain.AccountType(raw)
		if !t.Valid() {
			httputil.WriteError(w, r, h.log, domain.Validationf("unknown account type %q", raw))
			return
		}
		filter = &t
	}

	list, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, list)
}

// HandleGet handles GET /api/accounts/{code}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	account, err := h.service.Get(r.Context(), owner, chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, account)
}

// HandleCreate handles POST /api/accounts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in domain.AccountInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	account, err := h.service.Create(r.Context(), owner, in)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusCreated, account)
}

// HandleReplace handles PUT /api/accounts/{code}
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in domain.AccountInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	account, err := h.service.Replace(r.Context(), owner, chi.URLParam(r, "code"), in)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, account)
}

// HandleDelete handles DELETE /api/accounts/{code}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, chi.URLParam(r, "code")); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.log, domain.Authenticationf("Not authenticated"))
		return "", false
	}
	return user.Username, true
}
