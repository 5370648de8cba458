package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/logging"
	"github.com/wellnash/wellnash/internal/session"
)

// UserContextKey is where Auth stores the *domain.User for downstream handlers.
const UserContextKey = "user"

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// Auth protects routes that require a signed-in user. When verifier is nil
// the presence of a stored access token is trusted.
func Auth(verifier domain.SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, email, ok := session.Load(c)
			if !ok {
				return redirectToLogin(c)
			}

			user := &domain.User{Email: email}
			if verifier != nil {
				verified, err := verifier.VerifySession(c.Request().Context(), token)
				if err != nil {
					logging.FromContext(c.Request().Context()).Info("Rejecting stale session", "error", err)
					_ = session.Clear(c)
					return redirectToLogin(c)
				}
				user = verified
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(UserContextKey).(*domain.User)
	return user
}

// redirectToLogin sends the browser to the login page, asking it to come back
// to the requested path afterwards.
func redirectToLogin(c echo.Context) error {
	target := LoginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
	return c.Redirect(http.StatusSeeOther, target)
}
