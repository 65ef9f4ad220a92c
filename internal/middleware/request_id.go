package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader is the HTTP header carrying the request correlation id.
	// Proxies in front of the service may already set it.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the key the id is stored under in the Echo context.
	RequestIDKey = "request_id"
)

// RequestID returns a middleware that gives every request an id.
//
// Behavior:
//   - The incoming X-Request-ID header is reused when present.
//   - Otherwise a new UUID is generated.
//   - The id is stored in the Echo context (c.Set) for the logger and
//     tracing middleware.
//   - The id is set on the response header so clients can quote it when a
//     body is rejected.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)

			// Not provided upstream.
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(RequestIDKey, requestID)

			// Echo it back, also on error responses written later by
			// GlobalErrorHandler.
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request id from the Echo context.
//
// It returns "" when RequestID did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
