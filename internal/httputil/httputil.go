// Package httputil holds the JSON response helpers shared by module handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies decoded by DecodeJSON
const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// StatusFor maps a service error to an HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError writes {"detail": message} with the status mapped from err.
// Unexpected errors are logged and their message is not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status := StatusFor(err)
	message := err.Error()

	switch status {
	case http.StatusInternalServerError:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request failed")
		message = "Internal server error"
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	WriteJSON(w, log, status, map[string]string{"detail": message})
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}
