package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken persisted record. Presence of the row is the authority:
// a signed token whose row is gone must be rejected.
type RefreshToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the token manager on login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
