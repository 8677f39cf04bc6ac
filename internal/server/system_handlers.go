package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/httputil"
	"github.com/aristath/portfolio/internal/journal"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	defaultJournalLimit = 100
	maxJournalLimit     = 1000
)

// JournalReader reads settlement journal entries
type JournalReader interface {
	After(index uint64, limit int) ([]journal.Entry, error)
	CurrentIndex() uint64
}

// SystemHandlers serves health, stats and journal endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	db          *database.DB
	journal     JournalReader
	startupTime time.Time
	// systemStats is swapped in tests to avoid sampling the host
	systemStats func() (float64, float64)
}

// HealthResponse is returned by GET /system/health
type HealthResponse struct {
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsResponse is returned by GET /system/stats
type StatsResponse struct {
	CPUPercent    float64         `json:"cpu_percent"`
	MemoryPercent float64         `json:"memory_percent"`
	Database      *database.Stats `json:"database,omitempty"`
	JournalIndex  uint64          `json:"journal_index"`
	UptimeSeconds float64         `json:"uptime_seconds"`
}

// JournalResponse is returned by GET /system/journal
type JournalResponse struct {
	Entries      []journal.Entry `json:"entries"`
	CurrentIndex uint64          `json:"current_index"`
}

// NewSystemHandlers creates system handlers. j may be nil when no journal is configured.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, j JournalReader) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		db:          db,
		journal:     j,
		startupTime: time.Now(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// HandleHealth runs an integrity check of the store
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Health check failed")
		response.Status = "unhealthy"
		response.Error = err.Error()
		httputil.WriteJSON(w, h.log, http.StatusServiceUnavailable, response)
		return
	}

	httputil.WriteJSON(w, h.log, http.StatusOK, response)
}

// HandleStats returns host CPU and memory usage together with store statistics
func (h *SystemHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	response := StatsResponse{
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
	}

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get database stats")
	} else {
		response.Database = stats
	}

	if h.journal != nil {
		response.JournalIndex = h.journal.CurrentIndex()
	}

	httputil.WriteJSON(w, h.log, http.StatusOK, response)
}

// HandleJournal pages through settlement journal entries: ?after=N&limit=M
func (h *SystemHandlers) HandleJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		httputil.WriteError(w, r, h.log, domain.NotFoundf("Settlement journal is not enabled."))
		return
	}

	after, err := parseUintParam(r, "after", 0)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	limit, err := parseUintParam(r, "limit", defaultJournalLimit)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	if limit == 0 || limit > maxJournalLimit {
		limit = maxJournalLimit
	}

	entries, err := h.journal.After(after, int(limit))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, h.log, http.StatusOK, JournalResponse{
		Entries:      entries,
		CurrentIndex: h.journal.CurrentIndex(),
	})
}

func parseUintParam(r *http.Request, name string, fallback uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.Validationf("Query parameter %s must be a non-negative integer.", name)
	}
	return value, nil
}

// getSystemStats calculates CPU and RAM usage percentages over a short sampling window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
