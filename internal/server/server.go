package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/wellnash/wellnash/internal/audit"
	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/domain"
	"github.com/wellnash/wellnash/internal/handlers"
	appmiddleware "github.com/wellnash/wellnash/internal/middleware"
	"github.com/wellnash/wellnash/internal/pubsub"
	"github.com/wellnash/wellnash/internal/rendering"
	authsession "github.com/wellnash/wellnash/internal/session"
)

// Dependencies holds everything New needs to assemble a Server.
type Dependencies struct {
	Config config.Provider
	Auth   domain.Authenticator
	// Publisher receives attempt events. Optional.
	Publisher pubsub.Publisher
	// Echo lets tests supply their own instance. Optional.
	Echo *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E         *echo.Echo
	Cfg       config.Provider
	Auth      domain.Authenticator
	Submitter *authform.Submitter

	authHandler      *handlers.AuthHandler
	dashboardHandler *handlers.DashboardHandler
}

// New creates a new Server instance.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("server: auth backend is required")
	}

	opts := []authform.Option{
		authform.WithSuccessDelay(deps.Config.GetSuccessDelay()),
		authform.WithSessionTimeout(deps.Config.GetSessionTimeout()),
	}
	if deps.Publisher != nil {
		opts = append(opts, authform.WithEvents(audit.NewPublisher(deps.Publisher)))
	}
	submitter := authform.NewSubmitter(deps.Auth, opts...)

	revoker, _ := deps.Auth.(domain.SessionRevoker)

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	e.Use(session.Middleware(authsession.NewStore(deps.Config.GetSessionSecret(), deps.Config.GetSecureCookies())))

	e.Renderer = rendering.NewUniversalRenderer()
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	return &Server{
		E:                e,
		Cfg:              deps.Config,
		Auth:             deps.Auth,
		Submitter:        submitter,
		authHandler:      handlers.NewAuthHandler(submitter, revoker),
		dashboardHandler: handlers.NewDashboardHandler(),
	}, nil
}

// setupErrorHandling logs unhandled errors with a stack trace before handing
// them to echo's default handler. *echo.HTTPError values are expected
// responses and are passed through untouched.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			if he.Code >= http.StatusInternalServerError {
				slog.Error("Internal Server Error", "error", err, "path", c.Request().URL.Path)
			}
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		slog.Error("Internal Server Error (Unhandled)",
			"error", err.Error(),
			"path", c.Request().URL.Path,
			"stack_trace", string(debug.Stack()),
		)
		e.DefaultHTTPErrorHandler(err, c)
	}
}
