package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// No credential presented at all. Distinct from a bad one so the
	// client can tell "log in again" apart from "refresh and retry".
	ErrUnauthenticated = errors.New("no credential presented")

	// Credential presented but failed signature, format or expiry checks
	ErrInvalidCredential = errors.New("invalid credential")

	// Wrong email/password pair or wrong current password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh token is well formed but absent from the store
	ErrTokenRevoked = errors.New("refresh token revoked")

	// Signing secrets are missing: deployment problem, not a request problem
	ErrServerMisconfigured = errors.New("signing secrets are not configured")

	ErrSkillAlreadyExists = errors.New("skill already exists")
	ErrSkillNotFound      = errors.New("skill not found")
	ErrNoteNotFound       = errors.New("note not found")
)
