package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/middleware"
	"github.com/wellnash/wellnash/internal/view"
	"github.com/wellnash/wellnash/internal/view/dto/auth"
	"github.com/wellnash/wellnash/web/src/templates/layouts"
	"github.com/wellnash/wellnash/web/src/templates/pages"
)

// DashboardHandler handles the pages behind the Auth middleware.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// DashboardGet shows the user's dashboard page.
func (h *DashboardHandler) DashboardGet(c echo.Context) error {
	data := auth.DashboardData{Email: middleware.CurrentUser(c).Email}
	page := layouts.Base("Dashboard", view.GetFlashData(c), view.Templ(pages.Dashboard(data)))
	return c.Render(http.StatusOK, "", page)
}

// SettingsGet shows the settings page.
func (h *DashboardHandler) SettingsGet(c echo.Context) error {
	data := auth.DashboardData{Email: middleware.CurrentUser(c).Email}
	page := layouts.Base("Settings", view.GetFlashData(c), view.Templ(pages.Settings(data)))
	return c.Render(http.StatusOK, "", page)
}
