package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/minivalidation/internal/server"
)

// TracingMiddleware owns the New Relic related Echo middleware.
//
// It needs:
//   - server: for the environment name reported on every transaction
//   - nrApp: the New Relic application (nil when New Relic is disabled)
//
// The work is split in two layers:
//  1. NewRelicMiddleware() -> starts a transaction for every request
//  2. EnhanceTracing()     -> adds request attributes and notices errors
//
// The binding attributes (binding.status, binding.error_count, ...) are
// added later by the handler pipeline on the same transaction.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic Echo middleware.
//
// Behavior:
//   - nrApp is nil: a no-op middleware, requests pass through unchanged.
//   - nrApp is set: nrecho.Middleware, which starts a transaction per
//     request, stores it in the request context and records timing and
//     status codes.
//
// newrelic.FromContext only finds a transaction downstream of this
// middleware.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to the current transaction.
//
// It must run after NewRelicMiddleware so a transaction exists.
//
// Attributes added:
//   - client IP, user agent and content type
//   - service environment
//   - request id (when RequestID ran first)
//   - response status code (after the handler)
//
// Returned errors are noticed through nrpkgerrors.Wrap so the trace keeps
// the stack; the error is still returned for GlobalErrorHandler.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// nil when New Relic is disabled or the middleware order is wrong.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())

			// Lets rejected bodies (415) be grouped by what clients sent.
			txn.AddAttribute("http.content_type", c.Request().Header.Get(echo.HeaderContentType))
			txn.AddAttribute("service.environment", tm.server.Config.Primary.Env)

			// Correlates traces with log lines.
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// Known only once the handler has run.
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
