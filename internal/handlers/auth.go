package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/logging"
	"github.com/wellnash/wellnash/internal/middleware"
	"github.com/wellnash/wellnash/internal/session"
	"github.com/wellnash/wellnash/internal/view"
	"github.com/wellnash/wellnash/internal/view/dto/auth"
	"github.com/wellnash/wellnash/web/src/templates/layouts"
	"github.com/wellnash/wellnash/web/src/templates/pages"
)

// MsgSubmissionInFlight is shown when the same form is submitted again
// before the first submission resolved.
const MsgSubmissionInFlight = "A submission is already in progress."

// AuthHandler serves the sign-in/sign-up form and logout.
type AuthHandler struct {
	submitter *authform.Submitter
	revoker   domain.SessionRevoker
}

// NewAuthHandler creates a new AuthHandler. revoker may be nil when the
// backend cannot end sessions server-side.
func NewAuthHandler(submitter *authform.Submitter, revoker domain.SessionRevoker) *AuthHandler {
	return &AuthHandler{submitter: submitter, revoker: revoker}
}

// LoginGet renders the form (GET /login). The mode and next path come from
// the "signup" and "next" query parameters.
func (h *AuthHandler) LoginGet(c echo.Context) error {
	form := authform.New(c.QueryParam("signup"), c.QueryParam("next"))
	return h.renderForm(c, http.StatusOK, form)
}

// LoginPost handles one submission attempt (POST /login).
func (h *AuthHandler) LoginPost(c echo.Context) error {
	form := authform.Restore(c.FormValue("form_id"), c.QueryParam("signup"), c.QueryParam("next"))
	logger := logging.FromContext(c.Request().Context())

	var creds authform.Credentials
	if err := c.Bind(&creds); err != nil {
		logger.Warn("Failed to bind login form", "error", err)
		_ = form.Invalidate("Please check the form and try again.")
		return h.renderForm(c, http.StatusBadRequest, form)
	}
	form.Email = creds.Email

	if err := c.Validate(&creds); err != nil {
		_ = form.Invalidate(authform.ValidationMessage(err))
		return h.renderForm(c, http.StatusUnprocessableEntity, form)
	}

	outcome := h.submitter.Submit(c.Request().Context(), form, creds)
	switch {
	case errors.Is(outcome.Err, domain.ErrSubmissionInFlight):
		form.ErrorMessage = MsgSubmissionInFlight
		form.IsLoading = true
		return h.renderForm(c, http.StatusConflict, form)
	case outcome.Err != nil:
		logger.Error("Submission ended in an unexpected state", "error", outcome.Err)
		form.ErrorMessage = authform.GenericErrorMessage
		return h.renderForm(c, http.StatusInternalServerError, form)
	case !outcome.Succeeded():
		return h.renderForm(c, http.StatusOK, form)
	}

	if outcome.Session != nil && outcome.Session.AccessToken != "" {
		if err := session.Save(c, outcome.Session); err != nil {
			logger.Error("Failed to save session", "error", err)
			form = authform.Restore(form.ID, c.QueryParam("signup"), c.QueryParam("next"))
			form.Email = creds.Email
			form.ErrorMessage = authform.GenericErrorMessage
			return h.renderForm(c, http.StatusInternalServerError, form)
		}
	}

	return navigate(c, outcome.Redirect)
}

// Logout ends the session and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, _, ok := session.Load(c); ok && h.revoker != nil {
		if err := h.revoker.SignOut(c.Request().Context(), token); err != nil {
			logging.FromContext(c.Request().Context()).Warn("Failed to revoke session", "error", err)
		}
	}
	if err := session.Clear(c); err != nil {
		logging.FromContext(c.Request().Context()).Error("Failed to clear session", "error", err)
	}

	view.SetFlashSuccess(c, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// renderForm renders the full page, or only the form card when htmx asked.
// htmx does not swap 4xx/5xx responses, so the card always goes out as 200
// and the status is only kept for plain form posts.
func (h *AuthHandler) renderForm(c echo.Context, status int, form *authform.Form) error {
	data := auth.NewLoginData(form, formAction(form))

	if isHTMX(c) {
		return c.Render(http.StatusOK, "", view.Templ(pages.LoginCard(data)))
	}

	title := "Sign in"
	if form.Mode == domain.ModeSignUp {
		title = "Sign up"
	}
	page := layouts.Base(title, view.GetFlashData(c), view.Templ(pages.Login(data)))
	return c.Render(status, "", page)
}

// formAction keeps mode and next path on the POST URL so a submission is
// interpreted exactly like the form that was rendered.
func formAction(form *authform.Form) string {
	q := url.Values{}
	if form.Mode == domain.ModeSignUp {
		q.Set("signup", "true")
	}
	if form.NextPath != authform.DefaultNextPath {
		q.Set("next", form.NextPath)
	}
	if len(q) == 0 {
		return middleware.LoginPath
	}
	return middleware.LoginPath + "?" + q.Encode()
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// navigate sends the browser to path. htmx follows HX-Redirect with a full
// page load; plain form posts get a 303 so the POST is not replayed.
func navigate(c echo.Context, path string) error {
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, path)
}
