package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthHandler reports liveness and a few runtime figures.
type HealthHandler struct {
	catalog  services.CatalogServiceProvider
	users    services.UserServiceProvider
	sessions services.SessionServiceProvider
	started  time.Time
	proc     *process.Process
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(catalog services.CatalogServiceProvider, users services.UserServiceProvider, sessions services.SessionServiceProvider) *HealthHandler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("Process stats unavailable")
	}
	return &HealthHandler{
		catalog:  catalog,
		users:    users,
		sessions: sessions,
		started:  time.Now(),
		proc:     proc,
	}
}

// Get handles the health check request.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := envelope{
		"message":        "OK",
		"uptimeSeconds":  int64(time.Since(h.started).Seconds()),
		"catalog":        h.catalog.Stats(),
		"users":          h.users.Count(),
		"activeSessions": h.sessions.Active(),
	}

	if h.proc != nil {
		if mem, err := h.proc.MemoryInfoWithContext(r.Context()); err == nil {
			body["memoryRssBytes"] = mem.RSS
		}
		if n, err := h.proc.NumThreadsWithContext(r.Context()); err == nil {
			body["threads"] = n
		}
	}

	writeJSON(w, http.StatusOK, body)
}
