package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aristath/portfolio/internal/config"
	"github.com/aristath/portfolio/internal/di"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/journal"
	"github.com/aristath/portfolio/internal/modules/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DataDir:             tmpDir,
		Port:                8000,
		DevMode:             true,
		AuthSecret:          "test-secret",
		TokenTTL:            30 * time.Minute,
		AdminUsername:       "admin",
		AdminPassword:       "admin-password",
		JournalDir:          filepath.Join(tmpDir, "journal"),
		MaintenanceSchedule: "@every 1h",
		Backup:              &config.BackupConfig{},
	}

	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	s := New(Config{Log: zerolog.Nop(), Port: cfg.Port, DevMode: true, Container: container})
	s.systemHandlers.systemStats = func() (float64, float64) { return 12.5, 40 }
	return s
}

func (s *Server) do(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *Server) login(t *testing.T, username, password string) string {
	t.Helper()
	creds := `{"username":"` + username + `","password":"` + password + `"}`
	rec := s.do(t, "", http.MethodPost, "/api/sessions", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token auth.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	return token.AccessToken
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "", http.MethodGet, "/api/system/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/accounts", "/api/transactions", "/api/instruments", "/api/system/stats"} {
		rec := s.do(t, "", http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), path)
	}

	rec := s.do(t, "not-a-token", http.MethodGet, "/api/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettlementOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin-password")

	rec := s.do(t, admin, http.MethodPost, "/api/instruments", `{"type":"currency","description":"Euro","symbol":"EUR"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, "", http.MethodPost, "/api/users", `{"username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alice := s.login(t, "alice", "hunter2")

	// Catalog writes are admin only
	rec = s.do(t, alice, http.MethodPost, "/api/instruments", `{"type":"currency","description":"Dollar","symbol":"USD"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, alice, http.MethodPost, "/api/accounts", `{"type":"cash","code":"WALLET","description":"Wallet"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, alice, http.MethodPost, "/api/transactions", `{
		"description": "Salary",
		"total": {"instrument": "EUR", "quantity": "10"},
		"entries": [{"account": "WALLET", "balance": {"instrument": "EUR", "quantity": "10"}}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tx domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))

	rec = s.do(t, alice, http.MethodPost, "/api/transactions/"+tx.Code+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, alice, http.MethodGet, "/api/accounts/WALLET", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var wallet domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallet))
	require.Len(t, wallet.Assets, 1)
	assert.Equal(t, "10", wallet.Assets[0].Quantity.String())

	// The journal is admin only and holds the movement
	rec = s.do(t, alice, http.MethodGet, "/api/system/journal", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, admin, http.MethodGet, "/api/system/journal?after=0", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page JournalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Entries, 1)
	assert.Equal(t, journal.KindApply, page.Entries[0].Record.Kind)
	assert.Equal(t, "alice", page.Entries[0].Record.Owner)
	assert.Equal(t, "WALLET", page.Entries[0].Record.Account)
	assert.Equal(t, tx.Code, page.Entries[0].Record.Transaction)
	assert.Equal(t, page.Entries[0].Index, page.CurrentIndex)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin-password")

	rec := s.do(t, admin, http.MethodGet, "/api/system/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12.5, stats.CPUPercent)
	assert.Equal(t, 40.0, stats.MemoryPercent)
	require.NotNil(t, stats.Database)
	assert.Positive(t, stats.Database.PageCount)
}

func TestJournalQueryValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin-password")

	rec := s.do(t, admin, http.MethodGet, "/api/system/journal?after=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, admin, http.MethodGet, "/api/system/journal?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, admin, http.MethodGet, "/api/system/journal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page JournalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Entries)
}
