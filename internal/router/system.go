package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/handler"
)

// registerSystemRoutes registers endpoints that are not part of the API.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
}
