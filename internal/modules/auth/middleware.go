package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the user attached by RequireUser
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(contextKey{}).(domain.User)
	return user, ok
}

// Middleware resolves bearer tokens on incoming requests
type Middleware struct {
	service *Service
	log     zerolog.Logger
}

// NewMiddleware creates the bearer token middleware
func NewMiddleware(service *Service, log zerolog.Logger) *Middleware {
	return &Middleware{
		service: service,
		log:     log.With().Str("middleware", "auth").Logger(),
	}
}

// RequireUser rejects requests without a valid bearer token
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httputil.WriteError(w, r, m.log, domain.Authenticationf("Not authenticated"))
			return
		}

		user, err := m.service.Resolve(r.Context(), token)
		if err != nil {
			httputil.WriteError(w, r, m.log, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *user)))
	})
}

// RequireAdmin rejects requests whose user is not an admin. It must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, r, zerolog.Nop(), domain.Authenticationf("Not authenticated"))
			return
		}
		if !user.IsAdmin {
			httputil.WriteError(w, r, zerolog.Nop(), domain.Authorizationf("User is not authorised to perform the operation."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
