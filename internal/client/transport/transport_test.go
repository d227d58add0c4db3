package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession swaps the access token when SilentRefresh is called
type fakeSession struct {
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int
}

func (s *fakeSession) AccessToken() string { return s.token }

func (s *fakeSession) SilentRefresh(ctx context.Context) error {
	s.refreshCalls++
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.token = s.refreshed
	return nil
}

func call(t *testing.T, rt http.RoundTripper, url string, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	resp, err := client.Do(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	return resp, string(data)
}

func Test_AuthTransport(t *testing.T) {
	t.Parallel()

	t.Run("attaches bearer header", func(t *testing.T) {
		var seen string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		rt := &AuthTransport{Session: &fakeSession{token: "access-1"}}
		resp, _ := call(t, rt, srv.URL, "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Bearer access-1", seen)
	})

	t.Run("anonymous request carries no header", func(t *testing.T) {
		var seen string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		rt := &AuthTransport{Session: &fakeSession{}}
		call(t, rt, srv.URL, "")

		assert.Empty(t, seen)
	})

	t.Run("rejected credential is refreshed and replayed once", func(t *testing.T) {
		var tokens []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			tokens = append(tokens, token)
			if token != "Bearer access-2" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			data, _ := io.ReadAll(r.Body)
			_, _ = w.Write(data)
		}))
		defer srv.Close()

		sess := &fakeSession{token: "stale", refreshed: "access-2"}
		rt := &AuthTransport{Session: sess}
		resp, data := call(t, rt, srv.URL, `{"payload": true}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, sess.refreshCalls)
		assert.Equal(t, []string{"Bearer stale", "Bearer access-2"}, tokens)
		assert.JSONEq(t, `{"payload": true}`, data, "the body is replayed intact")
	})

	t.Run("replay happens at most once", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		sess := &fakeSession{token: "stale", refreshed: "still-rejected"}
		rt := &AuthTransport{Session: sess}
		resp, _ := call(t, rt, srv.URL, "")

		// The second rejection is returned to the caller, not retried
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, 1, sess.refreshCalls)
	})

	t.Run("role rejection is returned without a refresh", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": "authorization_failed", "message": "Admin role required"}`))
		}))
		defer srv.Close()

		sess := &fakeSession{token: "member-token", refreshed: "still-member"}
		rt := &AuthTransport{Session: sess}
		resp, data := call(t, rt, srv.URL, "")

		// A refreshed token has the same role, retrying cannot help
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, 1, attempts)
		assert.Equal(t, 0, sess.refreshCalls)
		assert.JSONEq(t, `{"error": "authorization_failed", "message": "Admin role required"}`, data, "the body must survive the envelope peek")
	})

	t.Run("refresh failure surfaces to the caller", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		refreshErr := errors.New("session expired, log in again")
		rt := &AuthTransport{Session: &fakeSession{token: "stale", refreshErr: refreshErr}}

		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, err = (&http.Client{Transport: rt}).Do(req)

		require.ErrorContains(t, err, "session expired")
	})

	t.Run("transport failure bubbles without refreshing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		sess := &fakeSession{token: "access-1"}
		rt := &AuthTransport{Session: sess}

		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, err = (&http.Client{Transport: rt}).Do(req)

		require.Error(t, err)
		assert.Equal(t, 0, sess.refreshCalls, "a network error never touches the session")
	})

	t.Run("success passes through untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		defer srv.Close()

		sess := &fakeSession{token: "access-1"}
		rt := &AuthTransport{Session: sess}
		resp, _ := call(t, rt, srv.URL, "")

		// Only 401 and 403 trigger the replay path
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, 0, sess.refreshCalls)
	})
}
