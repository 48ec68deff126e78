package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes. Profile routes sit behind the supplied
// authentication middleware.
func (h *Handler) MountRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/profile", h.profile)
		r.Put("/profile", h.updateProfile)
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,complexity"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    *users.User `json:"user"`
}

type userResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *users.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := shared.CheckStruct(req); fields != nil {
		httpx.FailFields(w, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	session, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", slog.String("email", session.User.Email))
	httpx.JSON(w, http.StatusCreated, sessionResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   session.Token,
		User:    session.User,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := shared.CheckStruct(req); fields != nil {
		httpx.FailFields(w, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	session, err := h.service.Login(r.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", slog.String("email", session.User.Email))
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Message: "Login successful",
		Token:   session.Token,
		User:    session.User,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	actor := users.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, h.logger, httpx.ErrMissingToken)
		return
	}

	user, err := h.service.Profile(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor := users.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, h.logger, httpx.ErrMissingToken)
		return
	}

	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := shared.CheckStruct(req); fields != nil {
		httpx.FailFields(w, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), actor.ID, UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("profile updated", slog.String("email", user.Email))
	httpx.JSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    user,
	})
}
