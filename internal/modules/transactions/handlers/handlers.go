// Package handlers provides HTTP handlers for transactions and their settlement.
package handlers

import (
	"context"
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/aristath/portfolio/internal/modules/transactions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles transaction HTTP requests
type Handler struct {
	service *transactions.Service
	log     zerolog.Logger
}

// NewHandler creates a new transactions handler
func NewHandler(service *transactions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "transactions").Logger(),
	}
}

// HandleList handles GET /api/transactions?status=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var filter *domain.TransactionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.TransactionStatus(raw)
		if !status.Valid() {
			httputil.WriteError(w, r, h.log, domain.Validationf("unknown transaction status %q", raw))
			return
		}
		filter = &status
	}

	list, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, list)
}

// HandleCreate handles POST /api/transactions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var proposal domain.TransactionProposal
	if err := httputil.DecodeJSON(r, &proposal); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	tx, err := h.service.Create(r.Context(), owner, proposal)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusCreated, tx)
}

// HandleGet handles GET /api/transactions/{code}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.withTransaction(w, r, h.service.Get)
}

// HandleComplete handles POST /api/transactions/{code}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.withTransaction(w, r, h.service.Complete)
}

// HandleCancel handles POST /api/transactions/{code}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.withTransaction(w, r, h.service.Cancel)
}

type transactionOp func(ctx context.Context, owner, code string) (*domain.Transaction, error)

func (h *Handler) withTransaction(w http.ResponseWriter, r *http.Request, op transactionOp) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	tx, err := op(r.Context(), owner, chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, tx)
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.log, domain.Authenticationf("Not authenticated"))
		return "", false
	}
	return user.Username, true
}
