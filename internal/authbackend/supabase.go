package authbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wellnash/wellnash/internal/domain"
)

// Supabase talks to a Supabase (GoTrue) auth endpoint over its REST API.
type Supabase struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabase creates a client for the project at baseURL, e.g.
// https://xyz.supabase.co, authenticating requests with the anon key.
func NewSupabase(baseURL, apiKey string, client *http.Client) *Supabase {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Supabase{baseURL: baseURL, apiKey: apiKey, client: client}
}

type supabaseCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// supabaseSession covers both the token endpoint response and the sign-up
// response; the latter has no access token when email confirmation is on.
type supabaseSession struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   int64         `json:"expires_at"`
	User        *supabaseUser `json:"user"`
	Email       string        `json:"email"`
}

// supabaseError matches the error bodies GoTrue returns across versions.
type supabaseError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e supabaseError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignIn exchanges email and password for a session.
func (s *Supabase) SignIn(ctx context.Context, email, password string) (domain.Result, error) {
	return s.credentialCall(ctx, "/auth/v1/token?grant_type=password", email, password)
}

// SignUp creates an account.
func (s *Supabase) SignUp(ctx context.Context, email, password string) (domain.Result, error) {
	return s.credentialCall(ctx, "/auth/v1/signup", email, password)
}

func (s *Supabase) credentialCall(ctx context.Context, path, email, password string) (domain.Result, error) {
	body, err := json.Marshal(supabaseCredentials{Email: email, Password: password})
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to marshal supabase payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to create supabase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to send request to supabase: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to read supabase response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return domain.Result{}, fmt.Errorf("supabase returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr supabaseError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.text() == "" {
			return domain.Result{}, fmt.Errorf("supabase returned status %d with unreadable body", resp.StatusCode)
		}
		slog.DebugContext(ctx, "Supabase rejected credentials", "status", resp.StatusCode, "message", apiErr.text())
		return domain.Rejected(apiErr.text()), nil
	}

	var sess supabaseSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Result{}, fmt.Errorf("failed to decode supabase response: %w", err)
	}

	out := &domain.Session{AccessToken: sess.AccessToken, Email: email}
	if sess.User != nil && sess.User.Email != "" {
		out.Email = sess.User.Email
	} else if sess.Email != "" {
		out.Email = sess.Email
	}
	if sess.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(sess.ExpiresAt, 0).UTC()
	}
	return domain.Result{Session: out}, nil
}

// VerifySession asks Supabase for the user behind token.
func (s *Supabase) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase request: %w", err)
	}
	s.authorize(req, token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrInvalidSession
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase returned status %d", resp.StatusCode)
	}

	var u supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode supabase user: %w", err)
	}
	return &domain.User{ID: u.ID, Email: u.Email}, nil
}

// SignOut revokes the session behind token.
func (s *Supabase) SignOut(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create supabase request: %w", err)
	}
	s.authorize(req, token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("supabase returned status %d", resp.StatusCode)
	}
	return nil
}

// authorize sets the project key and, when present, the user's bearer token.
// Without a user token the anon key doubles as the bearer.
func (s *Supabase) authorize(req *http.Request, token string) {
	req.Header.Set("apikey", s.apiKey)
	if token == "" {
		token = s.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
