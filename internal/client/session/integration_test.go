package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkotlyarov/skillboard/internal/apperrors"
	"github.com/vkotlyarov/skillboard/internal/client/api"
	"github.com/vkotlyarov/skillboard/internal/client/transport"
	"github.com/vkotlyarov/skillboard/internal/handlers"
	"github.com/vkotlyarov/skillboard/internal/handlers/middleware"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/repository/postgres"
	"github.com/vkotlyarov/skillboard/internal/service/auth"
	"github.com/vkotlyarov/skillboard/internal/service/auth/tokenmanager"
	"github.com/vkotlyarov/skillboard/internal/service/note"
	"github.com/vkotlyarov/skillboard/internal/service/skill"
	"github.com/vkotlyarov/skillboard/internal/testutil"
)

// Test the client against the real server: a stale access token is
// renewed silently and the original call is replayed, the user sees
// neither
func Test_SilentRenewalEndToEnd(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withServer := func(t *testing.T, fn func(url string, authService *auth.AuthService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tm, err := tokenmanager.New(tokenmanager.Config{
				AccessSecret:  "test-access-secret",
				RefreshSecret: "test-refresh-secret",
			})
			require.NoError(t, err)

			authService, err := auth.NewService(auth.Config{}, tm, storage)
			require.NoError(t, err)
			noteService, err := note.NewService(note.Config{}, storage)
			require.NoError(t, err)

			log := logger.NewNoOp()
			router := handlers.NewRouter(
				handlers.NewAuth(authService, log),
				handlers.NewUser(authService, log),
				handlers.NewSkill(skill.NewService(storage), log),
				handlers.NewNote(noteService, log),
				middleware.AuthMiddleware(authService),
				middleware.LoggerMiddleware(log),
			)

			srv := httptest.NewServer(router)
			defer srv.Close()

			fn(srv.URL, authService)
		})
	}

	login := func(t *testing.T, url string, authService *auth.AuthService) *Session {
		t.Helper()

		_, err := authService.Register(t.Context(), auth.RegisterParams{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "StrongEnoughPassword",
		})
		require.NoError(t, err)

		s, err := New(Config{BaseURL: url, StatePath: statePath(t)})
		require.NoError(t, err)
		require.NoError(t, s.Login(t.Context(), "alice@example.com", "StrongEnoughPassword"))
		return s
	}

	authedClient := func(url string, s *Session) *api.Client {
		return api.New(url, &http.Client{Transport: &transport.AuthTransport{Session: s}})
	}

	t.Run("stale access token is renewed transparently", func(t *testing.T) {
		withServer(t, func(url string, authService *auth.AuthService) {
			s := login(t, url, authService)
			client := authedClient(url, s)

			// Simulate an expired access token while the refresh token
			// stays valid
			s.mu.Lock()
			s.access = "stale-access-token"
			s.mu.Unlock()

			me, err := client.Me(t.Context())

			require.NoError(t, err, "the caller never sees the stale credential")
			assert.Equal(t, "alice", me.Username)
			assert.NotEqual(t, "stale-access-token", s.AccessToken(), "the session now holds a renewed token")
			assert.Equal(t, StateAuthenticated, s.State())
		})
	})

	t.Run("revoked refresh token ends the session", func(t *testing.T) {
		withServer(t, func(url string, authService *auth.AuthService) {
			s := login(t, url, authService)
			client := authedClient(url, s)

			// Revoke server side, then stale out the access token so the
			// next call has to go through refresh
			s.mu.Lock()
			refresh := s.refresh
			s.access = "stale-access-token"
			s.mu.Unlock()
			require.NoError(t, authService.Logout(t.Context(), refresh))

			_, err := client.Me(t.Context())

			require.ErrorIs(t, err, ErrSessionExpired)
			assert.Equal(t, StateAnonymous, s.State(), "a rejected renewal logs the client out")
			assert.Empty(t, s.AccessToken())
		})
	})

	t.Run("logout revokes the refresh token server side", func(t *testing.T) {
		withServer(t, func(url string, authService *auth.AuthService) {
			s := login(t, url, authService)

			s.mu.Lock()
			refresh := s.refresh
			s.mu.Unlock()

			s.Logout(t.Context())

			assert.Equal(t, StateAnonymous, s.State())

			// The revoke must have reached the store behind the
			// protected endpoint, not just cleared local state
			_, err := authService.Refresh(t.Context(), refresh)
			require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
		})
	})

	t.Run("valid access token needs no renewal", func(t *testing.T) {
		withServer(t, func(url string, authService *auth.AuthService) {
			s := login(t, url, authService)
			client := authedClient(url, s)

			before := s.AccessToken()
			me, err := client.Me(t.Context())

			require.NoError(t, err)
			assert.Equal(t, "alice", me.Username)
			assert.Equal(t, before, s.AccessToken(), "no refresh happened")
		})
	})
}
