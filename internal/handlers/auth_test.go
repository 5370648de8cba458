package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/handlers"
	"github.com/wellnash/wellnash/internal/rendering"
	authsession "github.com/wellnash/wellnash/internal/session"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

// mockAuth records every call and answers with a scripted result.
type mockAuth struct {
	mu      sync.Mutex
	signIns []string
	signUps []string
	result  domain.Result
	err     error
	revoked []string
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signIns = append(m.signIns, email)
	return m.result, m.err
}

func (m *mockAuth) SignUp(ctx context.Context, email, password string) (domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signUps = append(m.signUps, email)
	return m.result, m.err
}

func (m *mockAuth) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked = append(m.revoked, token)
	return nil
}

func (m *mockAuth) calls() (signIns, signUps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.signIns), len(m.signUps)
}

type testEnv struct {
	e        *echo.Echo
	auth     *mockAuth
	inflight *authform.InFlight
	delays   []time.Duration
}

func setupAuthTest(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		auth: &mockAuth{result: domain.Result{
			Session: &domain.Session{AccessToken: "test-token", Email: "user@example.com"},
		}},
		inflight: authform.NewInFlight(),
	}

	submitter := authform.NewSubmitter(env.auth,
		authform.WithInFlight(env.inflight),
		authform.WithSleep(func(ctx context.Context, d time.Duration) error {
			env.delays = append(env.delays, d)
			return nil
		}),
	)
	h := handlers.NewAuthHandler(submitter, env.auth)

	e := echo.New()
	e.Renderer = rendering.NewUniversalRenderer()
	e.Validator = handlers.NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))
	e.GET("/login", h.LoginGet)
	e.POST("/login", h.LoginPost)
	e.GET("/logout", h.Logout)

	env.e = e
	return env
}

func (env *testEnv) post(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func credentials(email, password string) url.Values {
	return url.Values{
		"form_id":  {"form-1"},
		"email":    {email},
		"password": {password},
	}
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestLoginGet(t *testing.T) {
	t.Run("renders sign in by default", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, "Welcome back", doc.Find("h1.auth-title").Text())
		assert.Equal(t, "/login", doc.Find("form").AttrOr("action", ""))
		assert.Equal(t, "/login?signup=true", doc.Find(".auth-switch a").AttrOr("href", ""))
		assert.NotEmpty(t, doc.Find("input[name=form_id]").AttrOr("value", ""))
		assert.Equal(t, 0, doc.Find(".auth-error").Length())
	})

	t.Run("pending attempts cover the card with a loading indicator", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		doc := parse(t, rec)
		assert.Equal(t, "#auth-card", doc.Find("form").AttrOr("hx-indicator", ""))
		overlay := doc.Find("#auth-card > .auth-overlay.htmx-indicator")
		require.Equal(t, 1, overlay.Length())
		assert.Equal(t, "Loading...", strings.TrimSpace(overlay.Text()))
	})

	t.Run("renders sign up and keeps next on the action", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login?signup=true&next=/settings", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, "Create your account", doc.Find("h1.auth-title").Text())
		assert.Contains(t, doc.Find("button[type=submit]").Text(), "Sign up")

		action, err := url.Parse(doc.Find("form").AttrOr("action", ""))
		require.NoError(t, err)
		assert.Equal(t, "true", action.Query().Get("signup"))
		assert.Equal(t, "/settings", action.Query().Get("next"))
	})

	t.Run("ignores an external next", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login?next=https://evil.example", nil))

		doc := parse(t, rec)
		assert.Equal(t, "/login", doc.Find("form").AttrOr("action", ""))
	})
}

func TestLoginPost(t *testing.T) {
	t.Run("sign in calls the backend once and redirects to the dashboard", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := env.post("/login", credentials("user@example.com", "password1"), false)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
		signIns, signUps := env.auth.calls()
		assert.Equal(t, 1, signIns)
		assert.Equal(t, 0, signUps)
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, env.delays)

		var stored bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == authsession.Name {
				stored = true
			}
		}
		assert.True(t, stored, "session cookie should be set")
	})

	t.Run("htmx submission navigates with HX-Redirect", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := env.post("/login?next=/settings", credentials("user@example.com", "password1"), true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/settings", rec.Header().Get("HX-Redirect"))
	})

	t.Run("next of root goes to the dashboard", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := env.post("/login?next=/", credentials("user@example.com", "password1"), false)

		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("sign up rejection is shown without navigating", func(t *testing.T) {
		env := setupAuthTest(t)
		env.auth.result = domain.Rejected("Email already in use")

		rec := env.post("/login?signup=true", credentials("taken@example.com", "password1"), true)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("HX-Redirect"))
		doc := parse(t, rec)
		assert.Equal(t, "Email already in use", strings.TrimSpace(doc.Find(".auth-error").Text()))
		assert.Equal(t, "taken@example.com", doc.Find("input[name=email]").AttrOr("value", ""))
		_, isDisabled := doc.Find("button[type=submit]").Attr("disabled")
		assert.False(t, isDisabled, "form should accept another attempt")

		_, signUps := env.auth.calls()
		assert.Equal(t, 1, signUps)
		assert.Empty(t, env.delays)
	})

	t.Run("unexpected failure shows the generic message", func(t *testing.T) {
		env := setupAuthTest(t)
		env.auth.err = errors.New("connection reset")

		rec := env.post("/login", credentials("user@example.com", "password1"), true)

		require.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, authform.GenericErrorMessage, strings.TrimSpace(doc.Find(".auth-error").Text()))
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})

	t.Run("invalid input is rejected before the backend", func(t *testing.T) {
		env := setupAuthTest(t)

		rec := env.post("/login", credentials("not-an-email", "short"), false)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, "Please enter a valid email address.", strings.TrimSpace(doc.Find(".auth-error").Text()))
		signIns, signUps := env.auth.calls()
		assert.Zero(t, signIns+signUps)
	})

	t.Run("htmx validation failure is swapped in with its message", func(t *testing.T) {
		env := setupAuthTest(t)

		// Browsers accept a dotless domain for type=email; the server does not.
		rec := env.post("/login", credentials("user@localhost", "password1"), true)

		assert.Equal(t, http.StatusOK, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, 1, doc.Find("#auth-card").Length())
		assert.Equal(t, "Please enter a valid email address.", strings.TrimSpace(doc.Find(".auth-error").Text()))
		assert.Equal(t, "user@localhost", doc.Find("input[name=email]").AttrOr("value", ""))
		signIns, signUps := env.auth.calls()
		assert.Zero(t, signIns+signUps)
	})

	t.Run("duplicate submission is refused", func(t *testing.T) {
		env := setupAuthTest(t)
		require.True(t, env.inflight.Acquire("form-1"))
		defer env.inflight.Release("form-1")

		rec := env.post("/login", credentials("user@example.com", "password1"), false)

		assert.Equal(t, http.StatusConflict, rec.Code)
		doc := parse(t, rec)
		assert.Equal(t, handlers.MsgSubmissionInFlight, strings.TrimSpace(doc.Find(".auth-error").Text()))
		_, isDisabled := doc.Find("button[type=submit]").Attr("disabled")
		assert.False(t, isDisabled, "the page must still allow a new attempt")
		signIns, _ := env.auth.calls()
		assert.Zero(t, signIns)
	})

	t.Run("htmx duplicate submission is swapped in", func(t *testing.T) {
		env := setupAuthTest(t)
		require.True(t, env.inflight.Acquire("form-1"))
		defer env.inflight.Release("form-1")

		rec := env.post("/login", credentials("user@example.com", "password1"), true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), handlers.MsgSubmissionInFlight)
		signIns, _ := env.auth.calls()
		assert.Zero(t, signIns)
	})

	t.Run("success without a token navigates without a session", func(t *testing.T) {
		env := setupAuthTest(t)
		env.auth.result = domain.Result{}

		rec := env.post("/login?signup=true", credentials("new@example.com", "password1"), false)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		for _, c := range rec.Result().Cookies() {
			assert.NotEqual(t, authsession.Name, c.Name)
		}
	})
}

func TestLogout(t *testing.T) {
	env := setupAuthTest(t)

	login := env.post("/login", credentials("user@example.com", "password1"), false)
	require.Equal(t, http.StatusSeeOther, login.Code)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"test-token"}, env.auth.revoked)
}
