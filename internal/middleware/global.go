package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/server"
)

// GlobalMiddlewares groups the middleware every route goes through and the
// global error handler.
//
// It holds *server.Server so the middleware can read configuration (CORS
// origins, slow request threshold, environment) at construction time.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware restricted to
// server.cors_allowed_origins.
//
// Browser clients calling the API from any other origin fail their
// preflight, before the body is ever bound.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger returns Echo's request logger with a zerolog LogValuesFunc.
//
// It writes one "API" line per request through the request-scoped logger
// set by ContextEnhancer, so the line carries request_id and trace ids.
//
// Level by final status:
//   - 5xx -> Error, with the returned error
//   - 4xx -> Warn (rejected and invalid bodies land here)
//   - otherwise -> Info
//
// Requests slower than logging.slow_request_threshold are flagged slow=true.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	slowThreshold := global.server.Config.Observability.Logging.SlowRequestThreshold

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler has not written the response yet when a
			// handler returns an error, so take the status from the error.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				}
			}

			// Stored by ContextEnhancer; a no-op logger otherwise.
			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			if slowThreshold > 0 && v.Latency > slowThreshold {
				e = e.Bool("slow", true)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns a panic in a handler into a 500 through GlobalErrorHandler
// instead of dropping the connection. A rule table with a bad validator tag
// panics at init, not here.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure sets the default security headers (X-XSS-Protection,
// X-Content-Type-Options, X-Frame-Options).
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler renders every error as an errs.HTTPError JSON body.
//
// Steps:
//  1. Normalize: *errs.HTTPError passes through (bind and validation
//     failures arrive this way from the handler pipeline). Echo's 404 and
//     405 are rewritten to our shape. Anything else becomes a generic 500
//     and the original error only goes to the log.
//  2. Log: 5xx at Error with a stack, everything else at Debug since
//     RequestLogger already reports the request.
//  3. Respond: JSON body with code, message, status and field errors, or
//     no body for HEAD requests. Nothing is written once the response is
//     committed.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			switch echoErr.Code {
			case http.StatusNotFound:
				err = errs.NewNotFoundError("Route not found", false, nil)
			case http.StatusMethodNotAllowed:
				code := errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusMethodNotAllowed))
				err = &errs.HTTPError{Code: code, Message: "Method not allowed", Status: http.StatusMethodNotAllowed}
			}
		} else {
			err = errs.NewInternalServerError()
		}
	}

	var echoErr *echo.HTTPError
	var status int
	var code string
	var message string
	var fieldErrors []errs.FieldError
	var action *errs.Action
	override := false

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		fieldErrors = httpErr.Errors
		action = httpErr.Action
		override = httpErr.Override

	case errors.As(err, &echoErr):
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(echoErr.Code)
		}

	default:
		status = http.StatusInternalServerError
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError))
		message = http.StatusText(http.StatusInternalServerError)
	}

	logger := *GetLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error().Stack().
			Err(originalErr).
			Int("status", status).
			Str("error_code", code).
			Msg(message)
	} else {
		logger.Debug().
			Err(originalErr).
			Int("status", status).
			Str("error_code", code).
			Int("field_error_count", len(fieldErrors)).
			Msg(message)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}

		_ = c.JSON(status, errs.HTTPError{
			Code:     code,
			Message:  message,
			Status:   status,
			Override: override,
			Errors:   fieldErrors,
			Action:   action,
		})
	}
}
