package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/handlers/authctx"
	"github.com/vkotlyarov/skillboard/internal/handlers/render"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/service/auth"
)

// Auth service surface the handlers depend on
type authService interface {
	// Register user. Has to return apperrors.ErrUserAlreadyExists on duplicate
	Register(ctx context.Context, params auth.RegisterParams) (models.User, error)

	// Login with email and password
	// Has to return apperrors.ErrInvalidCredentials on mismatch
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Exchange refresh token for a new access token
	// Has to return apperrors.ErrTokenRevoked if token absent from the store
	// and apperrors.ErrInvalidCredential if it fails signature or expiry checks
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Revoke refresh token. Idempotent
	Logout(ctx context.Context, refresh string) error

	// Verify current password, set new one, revoke all user sessions
	ChangePassword(ctx context.Context, userID uuid.UUID, current string, updated string) error

	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type AuthHandler struct {
	auth   authService
	logger logger.Logger
}

func NewAuth(auth authService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"omitempty,max=100"`
	}
	type RegisterSuccessResponse struct {
		Message string        `json:"message"`
		User    models.Public `json:"user"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
		Name:     data.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			h.logger.Error("register failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RegisterSuccessResponse{Message: "User registered successfully", User: user.Public()})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type LoginSuccessResponse struct {
		AccessToken  string        `json:"accessToken"`
		RefreshToken string        `json:"refreshToken"`
		User         models.Public `json:"user"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrServerMisconfigured):
			h.logger.Error("login failed, signing secrets missing", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		default:
			h.logger.Error("login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LoginSuccessResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		User:         user.Public(),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		Token string `json:"token" validate:"required"`
	}
	type RefreshSuccessResponse struct {
		AccessToken string `json:"accessToken"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	access, err := h.auth.Refresh(r.Context(), data.Token)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenRevoked):
			render.ServiceError(w, "Refresh token revoked", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrInvalidCredential):
			render.ServiceError(w, "Invalid refresh token", http.StatusForbidden)
		default:
			h.logger.Error("refresh failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RefreshSuccessResponse{AccessToken: access.Value})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		Token string `json:"token" validate:"required"`
	}
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[LogoutRequest](w, r)
	if err != nil {
		return
	}

	// Same confirmation whether the token existed or not, so logout
	// can't be used to probe which tokens are live
	if err := h.auth.Logout(r.Context(), data.Token); err != nil {
		h.logger.Error("logout failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	}
	type ChangePasswordSuccessResponse struct {
		Message string `json:"message"`
	}

	identity, ok := authctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[ChangePasswordRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.ChangePassword(r.Context(), identity.UserID, data.CurrentPassword, data.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Current password is wrong", http.StatusUnauthorized)
		default:
			h.logger.Error("change password failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, ChangePasswordSuccessResponse{Message: "Password changed, all sessions revoked"})
}
