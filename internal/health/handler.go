// Package health exposes liveness and store-connectivity endpoints.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/platform/httpx"
)

const pingTimeout = 2 * time.Second

// Handler serves health check endpoints.
type Handler struct {
	logger  *slog.Logger
	pool    *pgxpool.Pool
	env     string
	started time.Time
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, pool *pgxpool.Pool, env string) *Handler {
	return &Handler{logger: logger, pool: pool, env: env, started: time.Now()}
}

// MountRoutes registers health routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.basic)
	r.Get("/detailed", h.detailed)
	r.Get("/db", h.database)
}

func (h *Handler) basic(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "API is running",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) detailed(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := h.ping(r.Context()); err != nil {
		dbStatus = "disconnected"
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"api":      "running",
			"database": dbStatus,
		},
		"uptime":      time.Since(h.started).Seconds(),
		"environment": h.env,
	})
}

func (h *Handler) database(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		h.logger.Warn("database health check failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"success":   false,
			"database":  map[string]string{"status": "disconnected"},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"database":  map[string]string{"status": "connected"},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.pool.Ping(ctx)
}
