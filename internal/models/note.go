package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Note struct {
	ID        uuid.UUID       `json:"id"`
	AuthorID  uuid.UUID       `json:"authorId"`
	SkillID   uuid.UUID       `json:"skillId"`
	Body      string          `json:"body"`
	Credit    decimal.Decimal `json:"credit"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreditEntry is one row of the append-only credit ledger.
// The balance is the sum of entries for a user.
type CreditEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	NoteID    uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
}
