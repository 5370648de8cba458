package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/authform"
)

// HomeGet sends "/" to the dashboard; the Auth middleware there takes
// unauthenticated visitors to the login page.
func HomeGet(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, authform.DefaultNextPath)
}

// HealthGet is the liveness probe.
func HealthGet(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
