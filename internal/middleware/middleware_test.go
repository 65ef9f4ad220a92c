package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/minivalidation/internal/config"
	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/middleware"
	"github.com/deppfellow/minivalidation/internal/server"
)

func newServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Observability: config.DefaultObservabilityConfig()},
		Logger: &logger,
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	e := echo.New()
	handler := middleware.RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	generated := rec.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc", rec.Header().Get(middleware.RequestIDHeader))
}

func TestGlobalErrorHandler(t *testing.T) {
	t.Parallel()

	global := middleware.NewGlobalMiddlewares(newServer())

	tests := map[string]struct {
		method     string
		err        error
		wantStatus int
		wantBody   *errs.HTTPError
	}{
		"http error with field errors": {
			method: http.MethodPost,
			err: &errs.HTTPError{
				Code:     "VALIDATION_FAILED",
				Message:  "Validation failed",
				Status:   http.StatusBadRequest,
				Override: true,
				Errors:   []errs.FieldError{{Field: "Name", Error: "is required"}},
			},
			wantStatus: http.StatusBadRequest,
			wantBody: &errs.HTTPError{
				Code:     "VALIDATION_FAILED",
				Message:  "Validation failed",
				Status:   http.StatusBadRequest,
				Override: true,
				Errors:   []errs.FieldError{{Field: "Name", Error: "is required"}},
			},
		},
		"unknown error hides the cause": {
			method:     http.MethodGet,
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantBody: &errs.HTTPError{
				Code:    "INTERNAL_SERVER_ERROR",
				Message: http.StatusText(http.StatusInternalServerError),
				Status:  http.StatusInternalServerError,
			},
		},
		"echo method not allowed": {
			method:     http.MethodGet,
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody: &errs.HTTPError{
				Code:    "METHOD_NOT_ALLOWED",
				Message: "Method not allowed",
				Status:  http.StatusMethodNotAllowed,
			},
		},
		"head has no body": {
			method:     http.MethodHead,
			err:        errs.NewNotFoundError("gone", false, nil),
			wantStatus: http.StatusNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			req := httptest.NewRequest(tc.method, "/", nil)
			rec := httptest.NewRecorder()

			global.GlobalErrorHandler(tc.err, e.NewContext(req, rec))

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody == nil {
				assert.Empty(t, rec.Body.String())
				return
			}

			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, *tc.wantBody, body)
		})
	}
}
