// Package session stores the auth backend's access token in the signed
// session cookie.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/domain"
)

const (
	// Name is the cookie name of the auth session.
	Name = "auth-session"

	keyToken = "access_token"
	keyEmail = "email"

	maxAge = 86400 * 7
)

// NewStore creates the cookie store shared by the auth and flash sessions.
func NewStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Save records the session issued by the backend.
func Save(c echo.Context, s *domain.Session) error {
	sess, err := session.Get(Name, c)
	if err != nil {
		return fmt.Errorf("failed to load auth session: %w", err)
	}
	sess.Values[keyToken] = s.AccessToken
	sess.Values[keyEmail] = s.Email
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

// Load returns the stored access token and email. ok is false when no token
// is present.
func Load(c echo.Context) (token, email string, ok bool) {
	sess, err := session.Get(Name, c)
	if err != nil {
		return "", "", false
	}
	token, _ = sess.Values[keyToken].(string)
	email, _ = sess.Values[keyEmail].(string)
	return token, email, token != ""
}

// Clear expires the auth session cookie.
func Clear(c echo.Context) error {
	sess, err := session.Get(Name, c)
	if err != nil {
		return fmt.Errorf("failed to load auth session: %w", err)
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
