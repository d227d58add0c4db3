// Package transport wraps outbound requests with the session
// credential: it attaches the bearer header and transparently recovers
// from a single expired-credential rejection by refreshing and
// replaying the request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Error kind the server uses for role rejections. A refreshed token
// carries the same role, so these are returned without a retry
const authorizationErrorKind = "authorization_failed"

// tokenSource is the slice of the session the transport needs
type tokenSource interface {
	AccessToken() string
	SilentRefresh(ctx context.Context) error
}

// AuthTransport is an http.RoundTripper for protected calls.
//
// Each request carries its retried flag as an explicit local, so the
// at-most-once replay bound is visible in the control flow instead of
// being a convention. If refresh itself is broken every request fails
// after exactly one extra round trip, never loops.
type AuthTransport struct {
	// Base transport, http.DefaultTransport if nil
	Base http.RoundTripper

	// Session supplying and renewing the access token
	Session tokenSource
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Buffer the body so the request can be replayed after a refresh
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	retried := false
	for {
		attempt := req.Clone(req.Context())
		if body != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(body))
			attempt.ContentLength = int64(len(body))
		}
		if token := t.Session.AccessToken(); token != "" {
			attempt.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := base.RoundTrip(attempt)
		if err != nil {
			// Transport failure is not a credential failure: bubble it
			// up untouched, the session stays as it was
			return nil, err
		}

		if !isAuthRejection(resp.StatusCode) || retried {
			return resp, nil
		}
		if isRoleRejection(resp) {
			return resp, nil
		}

		// The server rejected the credential. Refresh once and replay
		retried = true
		resp.Body.Close() // nolint:errcheck

		if err := t.Session.SilentRefresh(req.Context()); err != nil {
			// SilentRefresh already cleared the session on an explicit
			// rejection. Surface the refresh error to the caller
			return nil, err
		}
	}
}

// isAuthRejection reports whether the status means the server refused
// the presented credential: 401 for a missing one, 403 for a bad or
// expired one
func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// isRoleRejection inspects the error envelope of a 4xx response. The
// body is buffered and restored so the caller still gets to read it
func isRoleRejection(resp *http.Response) bool {
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close() // nolint:errcheck
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return false
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) != nil {
		return false
	}

	return envelope.Error == authorizationErrorKind
}
