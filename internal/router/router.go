// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/handler"
	"github.com/deppfellow/minivalidation/internal/middleware"
	"github.com/deppfellow/minivalidation/internal/server"
)

// NewRouter builds the Echo instance with the global middleware chain and
// every route.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the New Relic transaction must exist
	// before the context enhancer builds the request logger.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1", middlewares.RateLimit.Limit())
	registerV1Routes(v1, h)

	return router
}
