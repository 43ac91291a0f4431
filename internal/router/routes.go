package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/catering-leads/internal/config"
	"github.com/octobees/catering-leads/internal/handler"
	middlewarepkg "github.com/octobees/catering-leads/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Leads *handler.LeadsHandler
}

// GeneratePath is rate limited by RATE_LIMIT_GENERATE.
const GeneratePath = "/leads/generate"

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	if e.Validator == nil {
		e.Validator = handler.NewRequestValidator()
	}

	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	leads := e.Group("/leads")
	leads.POST("/generate", handlers.Leads.Generate, middlewarepkg.RateLimiter(cfg.RateLimitGenerate, GeneratePath))
	leads.POST("/enrich", handlers.Leads.Enrich)
	leads.POST("/export", handlers.Leads.Export)
}
