package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/health"
	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Authenticator *auth.Authenticator
	AuthHandler   *auth.Handler
	UsersHandler  *users.Handler
	HealthHandler *health.Handler
}

// NewRouter constructs the chi.Router with the full middleware stack and all
// API routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Route("/api/health", params.HealthHandler.MountRoutes)

	r.Route("/api/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.Authenticator.Middleware)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Use(auth.RequireRoles(users.RoleAdmin))
		params.UsersHandler.MountRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, fmt.Sprintf("Route %s not found", r.URL.Path))
	})

	return r
}
