// Package session holds the client side session state in one explicit
// object: current tokens, cached identity and the state machine around
// them. Nothing here is a global, callers construct a Session and pass
// it where it is needed.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/vkotlyarov/skillboard/internal/client/api"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/models"
)

// ErrSessionExpired is returned when the server explicitly rejected the
// refresh token. The session has already been cleared when the caller
// sees it, a fresh login is the only way forward
var ErrSessionExpired = errors.New("session expired, log in again")

type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

type Config struct {
	// Server base URL, e.g. http://localhost:8000
	BaseURL string

	// Path of the JSON file caching identity and tokens between runs
	StatePath string

	// Client used for the session's own auth calls. Must NOT be wrapped
	// with the retrying transport. Defaults to http.DefaultClient
	HTTPClient *http.Client

	Logger logger.Logger
}

type Session struct {
	mu sync.Mutex

	state   State
	user    models.Public
	access  string
	refresh string

	store  *stateFile
	client *api.Client
	logger logger.Logger
}

func New(cfg Config) (*Session, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	if cfg.StatePath == "" {
		return nil, errors.New("state path must not be empty")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOp()
	}

	return &Session{
		state:  StateUnknown,
		store:  &stateFile{path: cfg.StatePath},
		client: api.New(cfg.BaseURL, cfg.HTTPClient),
		logger: log,
	}, nil
}

// Init hydrates cached identity from the state file first, so the UI
// can render who is logged in right away, then silently refreshes the
// access token against the server.
//
// Only an explicit rejection from the server demotes the session to
// anonymous. A network failure keeps the cached state: a dead wifi
// link is not a revoked session
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()

	cached, found, err := s.store.Load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !found || cached.RefreshToken == "" {
		s.state = StateAnonymous
		s.mu.Unlock()
		return nil
	}

	// Optimistic hydrate: show the cached identity while we check
	s.user = cached.User
	s.access = cached.AccessToken
	s.refresh = cached.RefreshToken
	s.state = StateAuthenticated
	s.mu.Unlock()

	err = s.SilentRefresh(ctx)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		s.logger.Warn("silent refresh failed, keeping cached session", "error", err)
		return nil
	}

	return err
}

// Login exchanges credentials for a token pair and persists the session
func (s *Session) Login(ctx context.Context, email string, password string) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.mu.Lock()
		s.state = StateAnonymous
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = resp.User
	s.access = resp.AccessToken
	s.refresh = resp.RefreshToken
	s.state = StateAuthenticated

	if err := s.store.Save(persistedState{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		// Session still works for this run, it just won't survive a restart
		s.logger.Warn("could not persist session state", "error", err)
	}

	return nil
}

// Logout clears local state unconditionally and tells the server to
// revoke the refresh token as a best effort. A failed revoke call is
// logged and swallowed: a network blip must never leave the user
// locally logged in
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	refresh := s.refresh
	access := s.access
	s.clearLocked()
	s.mu.Unlock()

	if refresh == "" {
		return
	}

	// The revoke endpoint is protected, the access token goes along
	if err := s.client.Logout(ctx, refresh, access); err != nil {
		s.logger.Warn("server side logout failed, local state cleared anyway", "error", err)
	}
}

// SilentRefresh exchanges the refresh token for a new access token.
// On explicit rejection the whole session is cleared and
// ErrSessionExpired is returned
func (s *Session) SilentRefresh(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()

	if refresh == "" {
		return ErrSessionExpired
	}

	resp, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		if _, rejected := api.AsAuthRejection(err); rejected {
			s.ForceLogout()
			return ErrSessionExpired
		}
		return fmt.Errorf("refresh error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = resp.AccessToken
	s.state = StateAuthenticated

	if err := s.store.Save(persistedState{
		User:         s.user,
		AccessToken:  s.access,
		RefreshToken: s.refresh,
	}); err != nil {
		s.logger.Warn("could not persist session state", "error", err)
	}

	return nil
}

// ForceLogout drops all local session state without calling the server.
// The transport uses it when refresh itself was rejected
func (s *Session) ForceLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// AccessToken returns the current access token, empty when anonymous
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// User returns the cached identity summary
func (s *Session) User() (models.Public, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.state == StateAuthenticated
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) clearLocked() {
	s.user = models.Public{}
	s.access = ""
	s.refresh = ""
	s.state = StateAnonymous

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("could not clear session state file", "error", err)
	}
}
