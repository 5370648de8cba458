package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/wellnash/wellnash/internal/logging"
)

// Logger injects a request-scoped logger carrying the request ID into the
// request context. It must run after echo's RequestID middleware.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		requestLogger := slog.Default().With("request_id", reqID)

		newCtx := logging.WithLogger(c.Request().Context(), requestLogger)
		c.SetRequest(c.Request().WithContext(newCtx))

		return next(c)
	}
}
