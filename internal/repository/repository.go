package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vkotlyarov/skillboard/internal/models"
)

type CreateUserParams struct {
	Username       string
	Email          string
	Name           string
	Role           string
	HashedPassword string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same username or email exists has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Replace user's password hash
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error

	// List all users, newest first
	ListUsers(ctx context.Context) ([]models.User, error)
}

// RefreshToken repository interface
//
// The row is the authority for a refresh token: Save puts it under authority,
// Delete withdraws it. A token that verifies cryptographically but has no row
// must be treated as revoked.
type RefreshTokenRepo interface {
	// Persist token record
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token record
	// If it is absent must return apperrors.ErrTokenRevoked
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Delete single token. Idempotent: deleting an absent token is not an error
	Delete(ctx context.Context, tokenString string) error

	// Delete every token owned by the user, returns how many rows went away
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Skill catalog repository interface
type SkillRepo interface {
	// Create skill
	// If skill with same slug exists has to return apperrors.ErrSkillAlreadyExists
	CreateSkill(ctx context.Context, skill models.Skill) (models.Skill, error)

	// If skill not found must return apperrors.ErrSkillNotFound
	GetSkillByID(ctx context.Context, id uuid.UUID) (models.Skill, error)

	ListSkills(ctx context.Context) ([]models.Skill, error)
}

// Note repository interface
type NoteRepo interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)

	// Recent notes, newest first, at most limit rows
	ListRecentNotes(ctx context.Context, limit int) ([]models.Note, error)
}

// Credit ledger repository interface
type CreditRepo interface {
	AddEntry(ctx context.Context, entry models.CreditEntry) (models.CreditEntry, error)

	// Sum of ledger entries for the user. Zero if there are none
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// Storage aggregates all repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Skill() SkillRepo
	Note() NoteRepo
	Credit() CreditRepo

	// InTx runs fn with a Storage bound to a single transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
