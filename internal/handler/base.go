package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/minivalidation/internal/binding"
	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/middleware"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/validation"
)

// Handler holds the shared application dependencies concrete handlers embed.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. req is nil when the request carried no
// body (or the JSON literal null); otherwise it passed validation.
type HandlerFunc[Req, Res any] func(c echo.Context, req *Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint that writes no response body.
type HandlerFuncNoContent[Req any] func(c echo.Context, req *Req) error

// ResponseHandler writes a successful result.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error

	// GetOperation names the handler type in logs.
	GetOperation() string
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, _ any) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

// Binding outcomes reported to logs and New Relic.
const (
	bindingValid    = "valid"
	bindingInvalid  = "invalid"
	bindingAbsent   = "absent"
	bindingRejected = "rejected"
)

// handleRequest is the pipeline shared by every endpoint with a body:
// bind, validate, run the endpoint, write the response. Terminal bind errors
// and validation failures are returned as *errs.HTTPError for the global
// error handler to render.
func handleRequest[Req any](
	c echo.Context,
	binder *binding.Binder[Req],
	handler func(c echo.Context, req *Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", c.Path()).
		Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Binding phase ----------------
	bindStart := time.Now()
	result, err := binder.Bind(c.Request())
	bindDuration := time.Since(bindStart)

	recordBinding := func(status string, errorCount int) {
		if txn != nil {
			txn.AddAttribute("binding.status", status)
			txn.AddAttribute("binding.error_count", errorCount)
			txn.AddAttribute("binding.duration_ms", bindDuration.Milliseconds())
		}
	}

	if err != nil {
		recordBinding(bindingRejected, 0)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Err(err).Dur("bind_duration", bindDuration).Msg("request ended while reading body")
			return err
		}

		logger.Warn().Err(err).Dur("bind_duration", bindDuration).Msg("request body rejected")
		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		return errs.FromBindError(err)
	}

	var req *Req
	switch {
	case result == nil:
		recordBinding(bindingAbsent, 0)

	case !result.IsValid():
		failures := result.Errors()
		recordBinding(bindingInvalid, len(failures))

		logger.Info().
			Int("error_count", len(failures)).
			Dur("bind_duration", bindDuration).
			Msg("request validation failed")

		return errs.ValidationError(failures)

	default:
		recordBinding(bindingValid, 0)
		value := result.Value()
		req = &value
	}

	// ---------------- Handler execution phase ----------------
	handlerStart := time.Now()
	res, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
	}

	logger.Debug().
		Dur("bind_duration", bindDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, res)
}

// Handle registers a typed endpoint whose body is validated with rules and
// whose result is written as JSON with status.
//
//	e.POST("/contacts", handler.Handle(h.Handler, h.CreateContact, http.StatusCreated, model.CreateContactRules))
func Handle[Req, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	rules *validation.RuleSet[Req],
) echo.HandlerFunc {
	binder := binding.New(rules, h.server.Binding)

	return func(c echo.Context) error {
		return handleRequest(c, binder, func(c echo.Context, req *Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleNoContent is Handle for endpoints that write no body.
func HandleNoContent[Req any](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
	rules *validation.RuleSet[Req],
) echo.HandlerFunc {
	binder := binding.New(rules, h.server.Binding)

	return func(c echo.Context) error {
		return handleRequest(c, binder, func(c echo.Context, req *Req) (any, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}

// requireBody rejects a request whose body was absent.
func requireBody[Req any](req *Req) error {
	if req == nil {
		code := "BODY_REQUIRED"
		return errs.NewBadRequestError("Request body is required", true, &code, nil, nil)
	}
	return nil
}
