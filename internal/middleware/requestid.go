package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// RequestID injects an identifier for traceability if the caller did not provide one,
// and stores a logger tagged with it for downstream handlers.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Set(ContextKeyLogger, zap.L().With(zap.String("request_id", rid)))
			c.Response().Header().Set(headerRequestID, rid)

			return next(c)
		}
	}
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}

// LoggerFromContext returns the request-scoped logger, or the global one.
func LoggerFromContext(c echo.Context) *zap.Logger {
	if logger, ok := c.Get(ContextKeyLogger).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}
