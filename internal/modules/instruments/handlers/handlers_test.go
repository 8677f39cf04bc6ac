package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/aristath/portfolio/internal/modules/institutions"
	"github.com/aristath/portfolio/internal/modules/instruments"
	testingpkg "github.com/aristath/portfolio/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = domain.User{Username: "root", IsAdmin: true}

func newTestRouter(t *testing.T) http.Handler {
	db := testingpkg.NewPortfolioDB(t)
	testingpkg.SeedInstitution(t, db, domain.Institution{Type: domain.InstitutionExchange, Name: "Nasdaq", Code: "NDQ"})

	log := zerolog.Nop()
	svc := instruments.NewService(
		instruments.NewRepository(db.Conn(), log),
		institutions.NewRepository(db.Conn(), log),
		log,
	)

	router := chi.NewRouter()
	NewHandler(svc, log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, user domain.User, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithUser(context.Background(), user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	assert.NotPanics(t, func() {
		NewHandler(nil, zerolog.Nop()).RegisterRoutes(router)
	})
	assert.NotEmpty(t, router.Routes())
}

func TestCreateAndFilter(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, admin, http.MethodPost, "/instruments",
		`{"type":"security","description":"Apple","symbol":"AAPL","exchange":"NDQ"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var aapl domain.Instrument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aapl))
	assert.Equal(t, "NDQ:AAPL", aapl.Code)

	rec = do(router, admin, http.MethodPost, "/instruments", `{"type":"currency","description":"Euro","symbol":"EUR"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, admin, http.MethodGet, "/instruments?type=security", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Instrument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "NDQ:AAPL", list[0].Code)

	rec = do(router, admin, http.MethodGet, "/instruments/NDQ:AAPL", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, admin, http.MethodGet, "/instruments?type=bond", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecurityWithoutExchangeIsRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, admin, http.MethodPost, "/instruments", `{"type":"security","description":"Apple","symbol":"AAPL"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, domain.User{Username: "alice"}, http.MethodPost, "/instruments", `{"type":"currency","symbol":"EUR"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
