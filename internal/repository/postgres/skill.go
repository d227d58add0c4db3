package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/models"
)

type SkillRepo struct {
	DB DBTX
}

const createSkill = `-- name: CreateSkill
INSERT INTO skills (id, slug, title, description)
VALUES ($1, $2, $3, $4)
RETURNING id, slug, title, description, created_at
`

func (r *SkillRepo) CreateSkill(ctx context.Context, skill models.Skill) (models.Skill, error) {
	id := skill.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createSkill, id, skill.Slug, skill.Title, skill.Description)
	created, err := pgx.CollectOneRow(rows, rowToSkill)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrSkillAlreadyExists
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getSkillByID = `-- name: GetSkillByID
SELECT id, slug, title, description, created_at
FROM skills
WHERE id = $1
`

func (r *SkillRepo) GetSkillByID(ctx context.Context, id uuid.UUID) (models.Skill, error) {
	rows, _ := r.DB.Query(ctx, getSkillByID, id)
	skill, err := pgx.CollectOneRow(rows, rowToSkill)

	switch {
	case err == nil:
		return skill, nil
	case errors.Is(err, pgx.ErrNoRows):
		return skill, apperrors.ErrSkillNotFound
	default:
		return skill, fmt.Errorf("db error: %w", err)
	}
}

const listSkills = `-- name: ListSkills
SELECT id, slug, title, description, created_at
FROM skills
ORDER BY title
`

func (r *SkillRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	rows, _ := r.DB.Query(ctx, listSkills)
	skills, err := pgx.CollectRows(rows, rowToSkill)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return skills, nil
}

func rowToSkill(row pgx.CollectableRow) (models.Skill, error) {
	var s models.Skill
	err := row.Scan(&s.ID, &s.Slug, &s.Title, &s.Description, &s.CreatedAt)
	return s, err
}
