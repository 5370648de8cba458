package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common failures.
var (
	ErrInvalidTransition  = errors.New("invalid form state transition")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrSessionNotReady    = errors.New("session did not become active in time")
	ErrInvalidSession     = errors.New("invalid or expired session")
)
