package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vkotlyarov/skillboard/internal/models"
)

type NoteRepo struct {
	DB DBTX
}

const createNote = `-- name: CreateNote
INSERT INTO notes (id, author_id, skill_id, body, credit)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, author_id, skill_id, body, credit, created_at
`

func (r *NoteRepo) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	id := note.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createNote, id, note.AuthorID, note.SkillID, note.Body, note.Credit)
	created, err := pgx.CollectOneRow(rows, rowToNote)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listRecentNotes = `-- name: ListRecentNotes
SELECT id, author_id, skill_id, body, credit, created_at
FROM notes
ORDER BY created_at DESC
LIMIT $1
`

func (r *NoteRepo) ListRecentNotes(ctx context.Context, limit int) ([]models.Note, error) {
	rows, _ := r.DB.Query(ctx, listRecentNotes, limit)
	notes, err := pgx.CollectRows(rows, rowToNote)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return notes, nil
}

func rowToNote(row pgx.CollectableRow) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.AuthorID, &n.SkillID, &n.Body, &n.Credit, &n.CreatedAt)
	return n, err
}

type CreditRepo struct {
	DB DBTX
}

const addCreditEntry = `-- name: AddCreditEntry
INSERT INTO credit_entries (id, user_id, note_id, amount)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, note_id, amount, created_at
`

func (r *CreditRepo) AddEntry(ctx context.Context, entry models.CreditEntry) (models.CreditEntry, error) {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, addCreditEntry, id, entry.UserID, entry.NoteID, entry.Amount)
	created, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.CreditEntry, error) {
		var e models.CreditEntry
		err := row.Scan(&e.ID, &e.UserID, &e.NoteID, &e.Amount, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const creditBalance = `-- name: CreditBalance
SELECT COALESCE(SUM(amount), 0)
FROM credit_entries
WHERE user_id = $1
`

func (r *CreditRepo) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	rows, _ := r.DB.Query(ctx, creditBalance, userID)
	balance, err := pgx.CollectOneRow(rows, pgx.RowTo[decimal.Decimal])
	if err != nil {
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}

	return balance, nil
}
