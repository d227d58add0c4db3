package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/handlers/authctx"
	"github.com/vkotlyarov/skillboard/internal/handlers/render"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/models"
)

type noteService interface {
	// Creates the note and awards author's credit atomically
	// Has to return apperrors.ErrSkillNotFound for an unknown skill
	CreateNote(ctx context.Context, authorID uuid.UUID, skillID uuid.UUID, body string) (models.Note, error)
	Feed(ctx context.Context) ([]models.Note, error)
	CreditBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type NoteHandler struct {
	notes  noteService
	logger logger.Logger
}

func NewNote(notes noteService, logger logger.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	type CreateNoteRequest struct {
		SkillID uuid.UUID `json:"skillId" validate:"required"`
		Body    string    `json:"body" validate:"required,min=1,max=5000"`
	}

	identity, ok := authctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[CreateNoteRequest](w, r)
	if err != nil {
		return
	}

	note, err := h.notes.CreateNote(r.Context(), identity.UserID, data.SkillID, data.Body)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSkillNotFound):
			render.ServiceError(w, "Skill not found", http.StatusNotFound)
		default:
			h.logger.Error("create note failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, note, http.StatusCreated)
}

func (h *NoteHandler) Feed(w http.ResponseWriter, r *http.Request) {
	type FeedResponse struct {
		Notes []models.Note `json:"notes"`
	}

	notes, err := h.notes.Feed(r.Context())
	if err != nil {
		h.logger.Error("feed failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, FeedResponse{Notes: notes})
}

func (h *NoteHandler) Credits(w http.ResponseWriter, r *http.Request) {
	type CreditsResponse struct {
		Balance decimal.Decimal `json:"balance"`
	}

	identity, ok := authctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	balance, err := h.notes.CreditBalance(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("credits failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, CreditsResponse{Balance: balance})
}
