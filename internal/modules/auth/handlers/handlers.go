// Package handlers provides HTTP handlers for users and sessions.
package handlers

import (
	"mime"
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/rs/zerolog"
)

// Handler handles user and session HTTP requests
type Handler struct {
	service *auth.Service
	log     zerolog.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service *auth.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "auth").Logger(),
	}
}

// HandleRegister handles POST /api/users
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.service.Register(r.Context(), creds)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	h.log.Info().Str("username", user.Username).Msg("User registered")
	httputil.WriteJSON(w, h.log, http.StatusCreated, user)
}

// HandleLogin handles POST /api/sessions.
// Accepts an OAuth2 password form or a JSON body.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			httputil.WriteError(w, r, h.log, domain.Validationf("invalid form body: %v", err))
			return
		}
		creds.Username = r.PostForm.Get("username")
		creds.Password = r.PostForm.Get("password")
	} else if err := httputil.DecodeJSON(r, &creds); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	token, err := h.service.Authenticate(r.Context(), creds)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, h.log, http.StatusOK, token)
}

// HandleCurrent handles GET /api/sessions/current
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.log, domain.Authenticationf("Not authenticated"))
		return
	}
	httputil.WriteJSON(w, h.log, http.StatusOK, user)
}
