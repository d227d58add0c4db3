package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/repository"
)

const defaultFeedLimit = 50

// Credit awarded to the author for each published note
var defaultNoteCredit = decimal.NewFromInt(10)

type Config struct {
	// Credit amount per note. Defaults to defaultNoteCredit
	NoteCredit decimal.Decimal

	// Feed page size. Defaults to defaultFeedLimit
	FeedLimit int
}

type Service struct {
	storage    repository.Storage
	noteCredit decimal.Decimal
	feedLimit  int
}

func NewService(cfg Config, storage repository.Storage) (*Service, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	credit := cfg.NoteCredit
	if credit.IsZero() {
		credit = defaultNoteCredit
	}

	limit := cfg.FeedLimit
	if limit == 0 {
		limit = defaultFeedLimit
	}

	return &Service{storage: storage, noteCredit: credit, feedLimit: limit}, nil
}

// CreateNote writes the note and awards the author's credit in one
// transaction, so a note never appears without its ledger entry
func (s *Service) CreateNote(ctx context.Context, authorID uuid.UUID, skillID uuid.UUID, body string) (models.Note, error) {
	var created models.Note

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		// Verify the skill exists to fail with a service error
		// instead of a bare foreign key violation
		if _, err := store.Skill().GetSkillByID(ctx, skillID); err != nil {
			return err
		}

		note, err := store.Note().CreateNote(ctx, models.Note{
			AuthorID: authorID,
			SkillID:  skillID,
			Body:     body,
			Credit:   s.noteCredit,
		})
		if err != nil {
			return err
		}

		_, err = store.Credit().AddEntry(ctx, models.CreditEntry{
			UserID: authorID,
			NoteID: note.ID,
			Amount: s.noteCredit,
		})
		if err != nil {
			return fmt.Errorf("error while awarding credit. Err: %w", err)
		}

		created = note
		return nil
	})

	return created, err
}

func (s *Service) Feed(ctx context.Context) ([]models.Note, error) {
	return s.storage.Note().ListRecentNotes(ctx, s.feedLimit)
}

func (s *Service) CreditBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.storage.Credit().Balance(ctx, userID)
}
