package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/users"
)

const bearerPrefix = "Bearer "

// Authenticator verifies bearer tokens and resolves the acting user.
type Authenticator struct {
	logger *slog.Logger
	tokens *TokenService
	repo   users.Repository
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(logger *slog.Logger, tokens *TokenService, repo users.Repository) *Authenticator {
	return &Authenticator{logger: logger, tokens: tokens, repo: repo}
}

// Middleware authenticates the request. It extracts the bearer token, verifies
// it, resolves the user record it names, and attaches the user to the request
// context. A token naming a user that no longer exists is invalid, and a
// deactivated user is refused even while the token is still within its TTL.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			httpx.RespondError(w, a.logger, httpx.ErrMissingToken)
			return
		}

		userID, err := a.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			httpx.RespondError(w, a.logger, err)
			return
		}

		user, err := a.repo.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				err = httpx.ErrInvalidToken
			}
			httpx.RespondError(w, a.logger, err)
			return
		}
		if !user.IsActive {
			httpx.RespondError(w, a.logger, httpx.ErrDeactivated)
			return
		}

		ctx := users.ContextWithActor(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles authorizes the authenticated user against an allow-list. It
// must run downstream of Middleware; a request with no resolved user is
// rejected rather than allowed through.
func RequireRoles(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.ActorFromContext(r.Context())
			if user == nil {
				httpx.RespondError(w, nil, httpx.ErrMissingToken)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, nil, httpx.ErrForbidden)
		})
	}
}
