package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/repository"
	"github.com/vkotlyarov/skillboard/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Identity decoded from a verified access token.
// This is all a protected handler may rely on without touching the db
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type Config struct {
	// Hasher to use during registration or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	Name     string
}

// AuthService owns the whole session lifecycle: it issues credential
// pairs, guards protected calls and revokes sessions out of band
type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if token == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Register creates the user record only. No credentials are issued:
// the client logs in afterwards
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.User, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Username:       params.Username,
		Email:          params.Email,
		Name:           params.Name,
		Role:           models.RoleMember,
		HashedPassword: hash,
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies the password and issues a fresh token pair.
// The refresh token is put under store authority before it is returned
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	// Ignore lookup error: compare runs against the zero user's empty
	// hash and fails the same way, so a prober can't tell the cases apart
	user, _ := s.storage.User().GetUserByEmail(ctx, email)

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.token.IssuePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	_, err = s.storage.Refresh().Save(ctx, models.RefreshToken{
		Token:     pair.Refresh.Value,
		UserID:    user.ID,
		ExpiresAt: pair.Refresh.ExpiresAt,
		CreatedAt: time.Now().Truncate(time.Second),
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
//
// Store membership is checked first: it is the authority, a deleted
// token must fail no matter how well it verifies. The same refresh
// token stays valid afterwards until its expiry or explicit revocation,
// there is no rotation on use.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	record, err := s.storage.Refresh().Get(ctx, refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}

	claims, err := s.token.ParseRefresh(refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}

	if record.UserID != claims.UserID {
		// Stored row and signed claims disagree, do not trust either
		return models.IssuedToken{}, apperrors.ErrInvalidCredential
	}

	user, err := s.storage.User().GetUserByID(ctx, record.UserID)
	if err != nil {
		return models.IssuedToken{}, err
	}

	access, err := s.token.IssueAccess(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return access, nil
}

// Logout withdraws the refresh token from authority. Idempotent:
// revoking a token that is already gone is still a success, so the
// response never reveals whether the token existed
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	return s.storage.Refresh().Delete(ctx, refresh)
}

// ChangePassword verifies the current password, replaces the hash and
// revokes every outstanding session of the user in one transaction
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current string, updated string) error {
	return s.storage.InTx(ctx, func(store repository.Storage) error {
		user, err := store.User().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
			return apperrors.ErrInvalidCredentials
		}

		hash, err := s.hasher.Hash(updated)
		if err != nil {
			return fmt.Errorf("can't use this as password, error=%w", err)
		}

		if err := store.User().UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}

		_, err = store.Refresh().DeleteAllForUser(ctx, user.ID)
		return err
	})
}

// VerifyAccess checks the access token and returns the identity baked
// into it. Purely cryptographic, no store round trip
func (s *AuthService) VerifyAccess(ctx context.Context, access string) (Identity, error) {
	claims, err := s.token.ParseAccess(access)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// GetUser loads the full user record for an authenticated identity
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// ListUsers returns every registered user. Admin surface only
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}
