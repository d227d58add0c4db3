package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleMember,
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		m, err := New(Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{AccessSecret: "a", RefreshSecret: "r"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new missing secrets", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{name: "no secrets at all", cfg: Config{}},
			{name: "no access secret", cfg: Config{RefreshSecret: "r"}},
			{name: "no refresh secret", cfg: Config{AccessSecret: "a"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.cfg)
				require.ErrorIs(t, err, apperrors.ErrServerMisconfigured, "missing secret is a deployment problem")
			})
		}
	})

	t.Run("access claims", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		issued, err := m.IssueAccess(testUser)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, time.Second)

		token, err := jwt.ParseWithClaims(issued.Value, &AccessClaims{}, func(token *jwt.Token) (any, error) {
			return []byte("test-access-secret"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid, "access token should be valid")

		claims, ok := token.Claims.(*AccessClaims)
		require.True(t, ok, "claims should be of type AccessClaims")
		assert.Equal(t, testUser.ID, claims.UserID, "user ID in token should match")
		assert.Equal(t, models.RoleMember, claims.Role, "role should travel inside the token")
		assert.NotEmpty(t, claims.ID, "token has to has jti")
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
		assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt.Time, 0)
	})

	t.Run("parse access ok", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		issued, err := m.IssueAccess(testUser)
		require.NoError(t, err)

		claims, err := m.ParseAccess(issued.Value)
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID)
		assert.Equal(t, testUser.Role, claims.Role)
	})

	t.Run("expired access rejected", func(t *testing.T) {
		// Negative TTL mints a token that is already past its window.
		// Signature is fine, time check alone must refuse it
		m := newManager(t, -time.Minute, 7*24*time.Hour)

		issued, err := m.IssueAccess(testUser)
		require.NoError(t, err)

		_, err = m.ParseAccess(issued.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredential, "expired token must fail even with correct signature")
	})

	t.Run("garbage access rejected", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		_, err := m.ParseAccess("not-even-a-jwt")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredential)
	})

	t.Run("secrets are not interchangeable", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		pair, err := m.IssuePair(testUser)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredential, "refresh token must not verify as access token")

		_, err = m.ParseRefresh(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredential, "access token must not verify as refresh token")
	})

	t.Run("refresh claims", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		issued, err := m.IssueRefresh(testUser)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), issued.ExpiresAt, time.Second)

		claims, err := m.ParseRefresh(issued.Value)
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID)
	})

	t.Run("issue pair generates different tokens", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 7*24*time.Hour)

		pair1, err := m.IssuePair(testUser)
		require.NoError(t, err)
		pair2, err := m.IssuePair(testUser)
		require.NoError(t, err)

		assert.NotEqual(t, pair1.Access.Value, pair2.Access.Value, "access tokens should be different")
		assert.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value, "refresh tokens should be different")
	})
}
