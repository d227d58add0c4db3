// Package api is the typed HTTP client for the skillboard server.
// It carries no credential logic itself: callers pass an *http.Client,
// which is either a bare one (auth endpoints) or one wrapped with the
// session transport (protected endpoints).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vkotlyarov/skillboard/internal/models"
)

// Error is a non-2xx response decoded from the server's error envelope
type Error struct {
	Status  int
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsAuthRejection reports whether the server explicitly rejected the
// caller's credential. Network failures never produce this, so the
// session layer can tell "log in again" apart from "try again later"
func (e *Error) IsAuthRejection() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsAuthRejection unwraps err into an auth-rejecting *Error if it is one
func AsAuthRejection(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.IsAuthRejection() {
		return apiErr, true
	}
	return nil, false
}

type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         models.Public `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string        `json:"message"`
	User    models.Public `json:"user"`
}

type FeedResponse struct {
	Notes []models.Note `json:"notes"`
}

type SkillsResponse struct {
	Skills []models.Skill `json:"skills"`
}

type CreditsResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type UsersResponse struct {
	Users []models.Public `json:"users"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpc: httpc}
}

func (c *Client) Register(ctx context.Context, username, email, password, name string) (RegisterResponse, error) {
	req := map[string]string{"username": username, "email": email, "password": password, "name": name}
	var resp RegisterResponse
	err := DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/auth/register", req, &resp)
	return resp, err
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	err := DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/auth/login", req, &resp)
	return resp, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (RefreshResponse, error) {
	req := map[string]string{"token": refreshToken}
	var resp RefreshResponse
	err := DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/auth/refresh", req, &resp)
	return resp, err
}

// Logout revokes the refresh token. The endpoint is protected, so the
// caller's access token must be presented alongside
func (c *Client) Logout(ctx context.Context, refreshToken string, accessToken string) error {
	req := map[string]string{"token": refreshToken}
	var resp MessageResponse
	return DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/auth/logout", req, &resp, WithBearer(accessToken))
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	req := map[string]string{"currentPassword": current, "newPassword": updated}
	var resp MessageResponse
	return DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/auth/change-password", req, &resp)
}

func (c *Client) Me(ctx context.Context) (models.Public, error) {
	var resp models.Public
	err := DoJSON(ctx, c.httpc, http.MethodGet, c.baseURL+"/api/me", nil, &resp)
	return resp, err
}

func (c *Client) Feed(ctx context.Context) ([]models.Note, error) {
	var resp FeedResponse
	err := DoJSON(ctx, c.httpc, http.MethodGet, c.baseURL+"/api/feed", nil, &resp)
	return resp.Notes, err
}

func (c *Client) Skills(ctx context.Context) ([]models.Skill, error) {
	var resp SkillsResponse
	err := DoJSON(ctx, c.httpc, http.MethodGet, c.baseURL+"/api/skills", nil, &resp)
	return resp.Skills, err
}

func (c *Client) CreateNote(ctx context.Context, skillID uuid.UUID, body string) (models.Note, error) {
	req := map[string]any{"skillId": skillID, "body": body}
	var resp models.Note
	err := DoJSON(ctx, c.httpc, http.MethodPost, c.baseURL+"/api/notes", req, &resp)
	return resp, err
}

func (c *Client) Credits(ctx context.Context) (decimal.Decimal, error) {
	var resp CreditsResponse
	err := DoJSON(ctx, c.httpc, http.MethodGet, c.baseURL+"/api/credits", nil, &resp)
	return resp.Balance, err
}

// RequestOption mutates the request before it is sent
type RequestOption func(*http.Request)

// WithBearer attaches the access token. An empty token adds no header
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// DoJSON sends an optional JSON body and decodes either the success
// payload into out or the error envelope into an *Error
func DoJSON(ctx context.Context, httpc *http.Client, method string, url string, in any, out any, opts ...RequestOption) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode request error: %w", err)
		}
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return fmt.Errorf("build request error: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		// Transport level failure: bubble as is, this is not a rejection
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Kind = envelope.Error
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response error: %w", err)
	}

	return nil
}
