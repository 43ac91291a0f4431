package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/octobees/catering-leads/internal/config"
)

// RateLimiter applies one shared token bucket to the given route paths. Other
// paths pass through. A zero config disables limiting.
func RateLimiter(cfg config.RateLimitConfig, paths ...string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 || len(paths) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limited := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		limited[p] = struct{}{}
	}
	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := limited[c.Path()]; !ok {
				return next(c)
			}
			if !limiter.Allow() {
				LoggerFromContext(c).Warn("rate limit exceeded", zap.String("path", c.Path()))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"status":  "error",
					"message": "rate limit exceeded, try again later",
				})
			}
			return next(c)
		}
	}
}
