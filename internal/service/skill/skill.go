package skill

import (
	"context"

	"github.com/google/uuid"

	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/repository"
)

// Service of the skill catalog. Reads are public, writes are admin only
// and the handler layer enforces that
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) CreateSkill(ctx context.Context, slug string, title string, description string) (models.Skill, error) {
	return s.storage.Skill().CreateSkill(ctx, models.Skill{
		Slug:        slug,
		Title:       title,
		Description: description,
	})
}

func (s *Service) GetSkill(ctx context.Context, id uuid.UUID) (models.Skill, error) {
	return s.storage.Skill().GetSkillByID(ctx, id)
}

func (s *Service) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return s.storage.Skill().ListSkills(ctx)
}
