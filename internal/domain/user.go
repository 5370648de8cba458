package domain

import (
	"context"
	"time"
)

// User is the identity an auth backend reports for a verified session.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
}

// Session is what a backend issues on a successful sign-in or sign-up.
// AccessToken may be empty when the backend accepted the request but did not
// start a session yet, e.g. a sign-up awaiting email confirmation.
type Session struct {
	AccessToken string    `json:"access_token,omitempty"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// AuthError is a structured rejection from the backend. Its Message is shown
// to the user verbatim.
type AuthError struct {
	Message string `json:"message"`
}

func (e *AuthError) Error() string { return e.Message }

// Result is the value a backend call resolves to: either an error-carrying
// value or a success-carrying one.
type Result struct {
	Error   *AuthError
	Session *Session
}

// Failed reports whether the backend rejected the request.
func (r Result) Failed() bool { return r.Error != nil }

// Rejected is a helper for building an error-carrying Result.
func Rejected(message string) Result {
	return Result{Error: &AuthError{Message: message}}
}

// Authenticator is the capability contract consumed from the auth backend.
// A non-nil error is an unexpected fault (transport failure, malformed
// response); a credential problem is reported through Result.Error.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Result, error)
	SignUp(ctx context.Context, email, password string) (Result, error)
}

// SessionVerifier is implemented by backends that can confirm an issued
// access token is active.
type SessionVerifier interface {
	VerifySession(ctx context.Context, accessToken string) (*User, error)
}

// SessionRevoker is implemented by backends that can end a session server-side.
type SessionRevoker interface {
	SignOut(ctx context.Context, accessToken string) error
}
