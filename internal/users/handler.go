package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
)

// Handler manages the administrative user endpoints. Role gating happens in
// the router; every route here assumes an authenticated admin actor.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type listResponse struct {
	Success    bool              `json:"success"`
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

type userResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
}

type statsResponse struct {
	Success bool   `json:"success"`
	Stats   *Stats `json:"stats"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=user admin moderator"`
	IsActive *bool   `json:"isActive"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.ParsePage(q.Get("page"))
	limit := shared.ParseLimit(q.Get("limit"))

	var filter ListFilter
	if raw := q.Get("role"); raw != "" {
		role := Role(raw)
		filter.Role = &role
	}
	if raw := q.Get("isActive"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}

	result, pagination, err := h.service.List(r.Context(), filter, page, limit)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Success: true, Users: result, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, httpx.ErrNotFound)
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, httpx.ErrNotFound)
		return
	}

	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := shared.CheckStruct(req); fields != nil {
		httpx.FailFields(w, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	user, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("user updated by admin", slog.String("email", user.Email))
	httpx.JSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "User updated successfully",
		User:    user,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, h.logger, httpx.ErrMissingToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, httpx.ErrNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), actor.ID, id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("user deleted by admin", slog.String("id", id.String()))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statsResponse{Success: true, Stats: stats})
}
