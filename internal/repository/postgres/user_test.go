package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/repository"
	"github.com/vkotlyarov/skillboard/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	params := repository.CreateUserParams{
		Username:       "nk",
		Email:          "nk@example.com",
		Name:           "Nikolai",
		Role:           models.RoleMember,
		HashedPassword: "hashed_password",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			user, err := repo.CreateUser(t.Context(), params)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID, "id should be generated")
			assert.Equal(t, "nk", user.Username)
			assert.Equal(t, "nk@example.com", user.Email)
			assert.Equal(t, models.RoleMember, user.Role)
			assert.False(t, user.CreatedAt.IsZero(), "created at should be set by db")
		})
	})

	t.Run("duplicate username fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			dup := params
			dup.Email = "other@example.com"
			_, err = repo.CreateUser(t.Context(), dup)
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("duplicate email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			dup := params
			dup.Username = "other"
			_, err = repo.CreateUser(t.Context(), dup)
			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get by id and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			byID, err := repo.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, byID.ID)

			byEmail, err := repo.GetUserByEmail(t.Context(), "nk@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)
		})
	})

	t.Run("get missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.GetUserByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = repo.GetUserByEmail(t.Context(), "ghost@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			require.NoError(t, repo.UpdatePassword(t.Context(), created.ID, "new-hash"))

			got, err := repo.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.HashedPassword)
		})
	})

	t.Run("update password of missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			err := repo.UpdatePassword(t.Context(), uuid.New(), "new-hash")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("list users", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			second := params
			second.Username = "other"
			second.Email = "other@example.com"
			_, err = repo.CreateUser(t.Context(), second)
			require.NoError(t, err)

			users, err := repo.ListUsers(t.Context())
			require.NoError(t, err)
			require.Len(t, users, 2)
		})
	})
}
