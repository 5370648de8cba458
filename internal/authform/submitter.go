package authform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/logging"
	"github.com/wellnash/wellnash/internal/retry"
)

// EventPublisher receives the outcome of every attempt that reached the backend.
type EventPublisher interface {
	PublishAttempt(ctx context.Context, evt domain.AttemptEvent) error
}

// Outcome is the resolution of one Submit call.
type Outcome struct {
	// Redirect is set only on success.
	Redirect string
	Session  *domain.Session
	// Err is ErrSubmissionInFlight when the submission was refused as a
	// duplicate; the form is left untouched in that case.
	Err error
}

// Succeeded reports whether the attempt ended in navigation.
func (o Outcome) Succeeded() bool { return o.Redirect != "" }

// Submitter runs submission attempts against an auth backend.
type Submitter struct {
	auth           domain.Authenticator
	inflight       *InFlight
	events         EventPublisher
	successDelay   time.Duration
	sessionTimeout time.Duration
	backoff        *retry.Backoff
	sleep          func(ctx context.Context, d time.Duration) error
	now            func() time.Time
}

// Option customizes a Submitter.
type Option func(*Submitter)

// WithEvents publishes attempt outcomes to p.
func WithEvents(p EventPublisher) Option {
	return func(s *Submitter) { s.events = p }
}

// WithSuccessDelay sets the fixed wait used when the session cannot be verified.
func WithSuccessDelay(d time.Duration) Option {
	return func(s *Submitter) { s.successDelay = d }
}

// WithSessionTimeout bounds how long a new session may take to become active.
func WithSessionTimeout(d time.Duration) Option {
	return func(s *Submitter) { s.sessionTimeout = d }
}

// WithBackoff sets the polling schedule for session verification.
func WithBackoff(b *retry.Backoff) Option {
	return func(s *Submitter) { s.backoff = b }
}

// WithSleep replaces the fallback wait. Tests use it to observe the delay.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Submitter) { s.sleep = fn }
}

// WithInFlight shares a duplicate-submission tracker.
func WithInFlight(g *InFlight) Option {
	return func(s *Submitter) { s.inflight = g }
}

// NewSubmitter creates a Submitter for auth.
func NewSubmitter(auth domain.Authenticator, opts ...Option) *Submitter {
	s := &Submitter{
		auth:           auth,
		inflight:       NewInFlight(),
		successDelay:   500 * time.Millisecond,
		sessionTimeout: 5 * time.Second,
		backoff:        retry.NewBackoff(),
		sleep:          retry.Sleep,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit performs one attempt for form with the given credentials. The form
// is mutated to reflect the outcome: on failure ErrorMessage is set and the
// form is Idle again, on success it is in its terminal phase.
func (s *Submitter) Submit(ctx context.Context, form *Form, creds Credentials) Outcome {
	if !s.inflight.Acquire(form.ID) {
		logging.FromContext(ctx).WarnContext(ctx, "Duplicate submission refused", "form_id", form.ID)
		return Outcome{Err: domain.ErrSubmissionInFlight}
	}
	defer s.inflight.Release(form.ID)

	form.Email = creds.Email
	if err := form.Begin(); err != nil {
		return Outcome{Err: err}
	}

	started := s.now()
	variant := form.Variant()
	logger := logging.FromContext(ctx).With("form_id", form.ID, "mode", form.Mode.String(), "email", creds.Email)

	res, err := variant.Invoke(ctx, s.auth, creds.Email, creds.Password)
	if err != nil {
		logger.ErrorContext(ctx, "Authentication error", "error", err)
		_ = form.Fail(GenericErrorMessage)
		s.publish(ctx, form, domain.OutcomeFault, err.Error(), "", started)
		return Outcome{}
	}
	logger.DebugContext(ctx, "Authentication response",
		"rejected", res.Failed(),
		"has_session", res.Session != nil && res.Session.AccessToken != "")

	if res.Failed() {
		_ = form.Fail(res.Error.Message)
		s.publish(ctx, form, domain.OutcomeRejected, res.Error.Message, "", started)
		return Outcome{}
	}

	if err := s.awaitSession(ctx, res.Session); err != nil {
		logger.ErrorContext(ctx, "Session did not become active", "error", err)
		_ = form.Fail(GenericErrorMessage)
		s.publish(ctx, form, domain.OutcomeFault, err.Error(), "", started)
		return Outcome{}
	}

	redirect, err := form.Succeed()
	if err != nil {
		return Outcome{Err: err}
	}
	logger.InfoContext(ctx, "Login successful, redirecting", "redirect", redirect)
	s.publish(ctx, form, domain.OutcomeSucceeded, "", redirect, started)
	return Outcome{Redirect: redirect, Session: res.Session}
}

// awaitSession blocks until the new session is observably active. Backends
// that can verify tokens are polled; otherwise the fixed delay is used.
func (s *Submitter) awaitSession(ctx context.Context, sess *domain.Session) error {
	verifier, ok := s.auth.(domain.SessionVerifier)
	if !ok || sess == nil || sess.AccessToken == "" {
		return s.sleep(ctx, s.successDelay)
	}

	ctx, cancel := context.WithTimeout(ctx, s.sessionTimeout)
	defer cancel()

	err := s.backoff.Retry(ctx, func(ctx context.Context) error {
		_, err := verifier.VerifySession(ctx, sess.AccessToken)
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", domain.ErrSessionNotReady, err)
		}
		return err
	}
	return nil
}

func (s *Submitter) publish(ctx context.Context, form *Form, outcome, message, redirect string, started time.Time) {
	if s.events == nil {
		return
	}
	now := s.now()
	evt := domain.AttemptEvent{
		FormID:     form.ID,
		Mode:       form.Mode.String(),
		Email:      form.Email,
		Outcome:    outcome,
		Message:    message,
		Redirect:   redirect,
		Duration:   now.Sub(started),
		OccurredAt: now,
	}
	if err := s.events.PublishAttempt(ctx, evt); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to publish attempt event", "error", err)
	}
}
