package authform_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/logging"
	"github.com/wellnash/wellnash/internal/retry"
)

// fakeAuth records calls and resolves them with canned values.
type fakeAuth struct {
	mu          sync.Mutex
	signInCalls int
	signUpCalls int
	result      domain.Result
	err         error
	block       chan struct{}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (domain.Result, error) {
	f.mu.Lock()
	f.signInCalls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (domain.Result, error) {
	f.mu.Lock()
	f.signUpCalls++
	f.mu.Unlock()
	return f.result, f.err
}

// verifyingAuth also implements domain.SessionVerifier.
type verifyingAuth struct {
	fakeAuth
	readyAfter int
	verifies   int
}

func (v *verifyingAuth) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	v.verifies++
	if v.verifies < v.readyAfter {
		return nil, domain.ErrInvalidSession
	}
	return &domain.User{Email: "a@b.com"}, nil
}

type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

type eventSink struct {
	events []domain.AttemptEvent
}

func (e *eventSink) PublishAttempt(ctx context.Context, evt domain.AttemptEvent) error {
	e.events = append(e.events, evt)
	return nil
}

var validCreds = authform.Credentials{Email: "a@b.com", Password: "password1"}

func TestForm_StateMachine(t *testing.T) {
	f := authform.New("", "")
	assert.Equal(t, authform.PhaseIdle, f.Phase())
	assert.NotEmpty(t, f.ID)

	_, err := f.Succeed()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cannot succeed from idle")
	assert.ErrorIs(t, f.Fail("x"), domain.ErrInvalidTransition, "cannot fail from idle")

	require.NoError(t, f.Begin())
	assert.True(t, f.IsLoading)
	assert.ErrorIs(t, f.Begin(), domain.ErrInvalidTransition, "cannot begin twice")

	require.NoError(t, f.Fail("Invalid login credentials"))
	assert.Equal(t, authform.PhaseIdle, f.Phase())
	assert.False(t, f.IsLoading)
	assert.Equal(t, "Invalid login credentials", f.ErrorMessage)

	require.NoError(t, f.Begin())
	assert.Empty(t, f.ErrorMessage, "a new attempt clears the previous error")

	path, err := f.Succeed()
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", path)
	assert.Equal(t, authform.PhaseSuccess, f.Phase())
	assert.ErrorIs(t, f.Begin(), domain.ErrInvalidTransition, "success is terminal")
}

func TestNextFromQuery(t *testing.T) {
	tests := map[string]string{
		"":                       "/dashboard",
		"/settings":              "/settings",
		"/":                      "/",
		"/plans?week=2":          "/plans?week=2",
		"https://evil.example":   "/dashboard",
		"//evil.example/path":    "/dashboard",
		`/\evil.example`:         "/dashboard",
		"settings":               "/dashboard",
		"javascript:alert(1)":    "/dashboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, authform.NextFromQuery(in), "next=%q", in)
	}
}

func TestRedirectTarget(t *testing.T) {
	assert.Equal(t, "/dashboard", authform.RedirectTarget("/"))
	assert.Equal(t, "/dashboard", authform.RedirectTarget(""))
	assert.Equal(t, "/settings", authform.RedirectTarget("/settings"))
}

func TestVariantFor(t *testing.T) {
	in := authform.VariantFor(domain.ModeSignIn)
	assert.Equal(t, "Welcome back", in.Copy.Title)
	assert.Equal(t, "/login?signup=true", in.Copy.SwitchHref)

	up := authform.VariantFor(domain.ModeSignUp)
	assert.Equal(t, "Create your account", up.Copy.Title)
	assert.Equal(t, "Creating account...", up.Copy.Loading)
	assert.Equal(t, "/login", up.Copy.SwitchHref)
}

func TestCredentialsValidation(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Struct(validCreds))

	err := v.Struct(authform.Credentials{Email: "", Password: "password1"})
	assert.Equal(t, "Please enter your email address.", authform.ValidationMessage(err))

	err = v.Struct(authform.Credentials{Email: "not-an-email", Password: "password1"})
	assert.Equal(t, "Please enter a valid email address.", authform.ValidationMessage(err))

	err = v.Struct(authform.Credentials{Email: "a@b.com", Password: "short"})
	assert.Equal(t, "Password must be at least 8 characters long.", authform.ValidationMessage(err))

	assert.Equal(t, "Please check the form and try again.", authform.ValidationMessage(errors.New("other")))
}

func TestSubmit_SignInSuccessUsesFixedDelayWithoutVerifier(t *testing.T) {
	auth := &fakeAuth{result: domain.Result{}}
	sleeper := &recordedSleep{}
	events := &eventSink{}
	s := authform.NewSubmitter(auth, authform.WithSleep(sleeper.sleep), authform.WithEvents(events))

	form := authform.New("", "")
	out := s.Submit(context.Background(), form, validCreds)

	require.NoError(t, out.Err)
	assert.Equal(t, "/dashboard", out.Redirect)
	assert.Equal(t, 1, auth.signInCalls)
	assert.Zero(t, auth.signUpCalls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleeper.delays)

	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OutcomeSucceeded, events.events[0].Outcome)
	assert.Equal(t, "sign_in", events.events[0].Mode)
}

func TestSubmit_SignUpRejected(t *testing.T) {
	auth := &fakeAuth{result: domain.Rejected("Email already in use")}
	sleeper := &recordedSleep{}
	s := authform.NewSubmitter(auth, authform.WithSleep(sleeper.sleep))

	form := authform.New("true", "")
	out := s.Submit(context.Background(), form, validCreds)

	assert.False(t, out.Succeeded())
	assert.NoError(t, out.Err)
	assert.Equal(t, 1, auth.signUpCalls)
	assert.Zero(t, auth.signInCalls)
	assert.Equal(t, "Email already in use", form.ErrorMessage)
	assert.False(t, form.IsLoading)
	assert.Empty(t, sleeper.delays, "no navigation wait on failure")
}

func TestSubmit_FaultShowsGenericMessage(t *testing.T) {
	auth := &fakeAuth{err: errors.New("connection refused")}
	events := &eventSink{}
	s := authform.NewSubmitter(auth, authform.WithEvents(events))

	form := authform.New("", "/settings")
	out := s.Submit(context.Background(), form, validCreds)

	assert.False(t, out.Succeeded())
	assert.Equal(t, authform.GenericErrorMessage, form.ErrorMessage)
	assert.False(t, form.IsLoading)
	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OutcomeFault, events.events[0].Outcome)
}

func TestSubmit_EmptyRejectionMessageShowsGenericMessage(t *testing.T) {
	auth := &fakeAuth{result: domain.Rejected("")}
	events := &eventSink{}
	s := authform.NewSubmitter(auth, authform.WithEvents(events))

	form := authform.New("", "")
	out := s.Submit(context.Background(), form, validCreds)

	assert.False(t, out.Succeeded())
	assert.Equal(t, authform.GenericErrorMessage, form.ErrorMessage, "an error is never shown blank")
	assert.Equal(t, authform.PhaseIdle, form.Phase())
	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OutcomeRejected, events.events[0].Outcome)
}

func TestSubmit_LogsWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "text", "debug").With("request_id", "req-42")
	ctx := logging.WithLogger(context.Background(), logger)

	auth := &fakeAuth{err: errors.New("connection refused")}
	s := authform.NewSubmitter(auth)

	s.Submit(ctx, authform.New("", ""), validCreds)

	out := buf.String()
	assert.Contains(t, out, "Authentication error")
	assert.Contains(t, out, "request_id=req-42")
	assert.Contains(t, out, "connection refused")
}

func TestSubmit_NextPath(t *testing.T) {
	auth := &fakeAuth{}
	s := authform.NewSubmitter(auth, authform.WithSleep((&recordedSleep{}).sleep))

	out := s.Submit(context.Background(), authform.New("", "/settings"), validCreds)
	assert.Equal(t, "/settings", out.Redirect)

	out = s.Submit(context.Background(), authform.New("", "/"), validCreds)
	assert.Equal(t, "/dashboard", out.Redirect)
}

func TestSubmit_WaitsForVerifiedSession(t *testing.T) {
	auth := &verifyingAuth{
		fakeAuth:   fakeAuth{result: domain.Result{Session: &domain.Session{AccessToken: "tok"}}},
		readyAfter: 3,
	}
	sleeper := &recordedSleep{}
	s := authform.NewSubmitter(auth,
		authform.WithSleep(sleeper.sleep),
		authform.WithBackoff(&retry.Backoff{BaseDelay: time.Millisecond, Multiplier: 1}),
	)

	out := s.Submit(context.Background(), authform.New("", ""), validCreds)

	assert.True(t, out.Succeeded())
	assert.Equal(t, 3, auth.verifies)
	assert.Empty(t, sleeper.delays, "verified sessions skip the fixed delay")
}

func TestSubmit_SessionNeverReady(t *testing.T) {
	auth := &verifyingAuth{
		fakeAuth:   fakeAuth{result: domain.Result{Session: &domain.Session{AccessToken: "tok"}}},
		readyAfter: 1 << 30,
	}
	s := authform.NewSubmitter(auth,
		authform.WithSessionTimeout(20*time.Millisecond),
		authform.WithBackoff(&retry.Backoff{BaseDelay: time.Millisecond, Multiplier: 1}),
	)

	form := authform.New("", "")
	out := s.Submit(context.Background(), form, validCreds)

	assert.False(t, out.Succeeded())
	assert.Equal(t, authform.GenericErrorMessage, form.ErrorMessage)
}

func TestSubmit_DuplicateSubmissionReachesBackendOnce(t *testing.T) {
	auth := &fakeAuth{block: make(chan struct{})}
	s := authform.NewSubmitter(auth, authform.WithSleep((&recordedSleep{}).sleep))
	form := authform.New("", "")

	first := make(chan authform.Outcome)
	go func() {
		first <- s.Submit(context.Background(), authform.Restore(form.ID, "", ""), validCreds)
	}()

	require.Eventually(t, func() bool {
		auth.mu.Lock()
		defer auth.mu.Unlock()
		return auth.signInCalls == 1
	}, time.Second, time.Millisecond)

	second := s.Submit(context.Background(), authform.Restore(form.ID, "", ""), validCreds)
	assert.ErrorIs(t, second.Err, domain.ErrSubmissionInFlight)

	close(auth.block)
	assert.True(t, (<-first).Succeeded())
	assert.Equal(t, 1, auth.signInCalls)
}
