package handlers

import (
	"net/http"

	"github.com/vkotlyarov/skillboard/internal/handlers/authctx"
	"github.com/vkotlyarov/skillboard/internal/handlers/render"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/models"
)

type UserHandler struct {
	auth   authService
	logger logger.Logger
}

func NewUser(auth authService, logger logger.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger}
}

// Me returns the caller's identity summary
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.GetUser(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("me failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, user.Public())
}

// ListUsers is the admin table behind /api/admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	type UsersResponse struct {
		Users []models.Public `json:"users"`
	}

	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := UsersResponse{Users: make([]models.Public, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.Public())
	}

	render.JSON(w, resp)
}
