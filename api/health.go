package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/team-sapphire/vayazh/internal/log"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	assistant Assistant
	pool      *pgxpool.Pool
	logger    log.Logger
}

// NewHealthHandler creates a new health handler. pool may be nil in tests;
// readiness then skips the database check.
func NewHealthHandler(assistant Assistant, pool *pgxpool.Pool, logger log.Logger) *HealthHandler {
	return &HealthHandler{assistant: assistant, pool: pool, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns 200 OK once the knowledge index is built and the
// database answers a ping.
func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if !h.assistant.Ready() {
		http.Error(w, "knowledge index still building", http.StatusServiceUnavailable)
		return
	}
	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			h.logger.Error("readiness check failed", "error", err)
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
