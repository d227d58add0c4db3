package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/handlers/render"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/models"
)

type skillService interface {
	// Has to return apperrors.ErrSkillAlreadyExists on duplicate slug
	CreateSkill(ctx context.Context, slug string, title string, description string) (models.Skill, error)
	GetSkill(ctx context.Context, id uuid.UUID) (models.Skill, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
}

type SkillHandler struct {
	skills skillService
	logger logger.Logger
}

func NewSkill(skills skillService, logger logger.Logger) *SkillHandler {
	return &SkillHandler{skills: skills, logger: logger}
}

func (h *SkillHandler) List(w http.ResponseWriter, r *http.Request) {
	type SkillsResponse struct {
		Skills []models.Skill `json:"skills"`
	}

	skills, err := h.skills.ListSkills(r.Context())
	if err != nil {
		h.logger.Error("list skills failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, SkillsResponse{Skills: skills})
}

func (h *SkillHandler) Create(w http.ResponseWriter, r *http.Request) {
	type CreateSkillRequest struct {
		Slug        string `json:"slug" validate:"required,min=2,max=64"`
		Title       string `json:"title" validate:"required,min=2,max=120"`
		Description string `json:"description" validate:"omitempty,max=2000"`
	}

	data, err := render.BindAndValidate[CreateSkillRequest](w, r)
	if err != nil {
		return
	}

	skill, err := h.skills.CreateSkill(r.Context(), data.Slug, data.Title, data.Description)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSkillAlreadyExists):
			render.ServiceError(w, "Skill already exists", http.StatusConflict)
		default:
			h.logger.Error("create skill failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, skill, http.StatusCreated)
}
