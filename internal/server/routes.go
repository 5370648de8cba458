package server

import (
	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/handlers"
	"github.com/wellnash/wellnash/internal/middleware"
	"github.com/wellnash/wellnash/web"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(s.Cfg.GetRateLimit())

	verifier, _ := s.Auth.(domain.SessionVerifier)
	requireAuth := middleware.Auth(verifier)

	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	s.E.GET("/", handlers.HomeGet)

	s.E.GET("/login", s.authHandler.LoginGet)
	s.E.POST("/login", s.authHandler.LoginPost, rateLimiter)
	s.E.GET("/logout", s.authHandler.Logout)

	app := s.E.Group("", requireAuth)
	app.GET("/dashboard", s.dashboardHandler.DashboardGet)
	app.GET("/settings", s.dashboardHandler.SettingsGet)

	s.E.GET("/health", handlers.HealthGet)
}
