package errs

import (
	"errors"
	"net/http"

	"github.com/deppfellow/minivalidation/internal/binding"
	"github.com/deppfellow/minivalidation/internal/validation"
)

func codeFor(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default BAD_REQUEST code when not nil.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := codeFor(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusForbidden),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := codeFor(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewPayloadTooLargeError creates a 413 Request Entity Too Large HTTPError.
func NewPayloadTooLargeError(message string) *HTTPError {
	return &HTTPError{
		Code:     "PAYLOAD_TOO_LARGE",
		Message:  message,
		Status:   http.StatusRequestEntityTooLarge,
		Override: true,
	}
}

// NewUnsupportedMediaTypeError creates a 415 Unsupported Media Type HTTPError.
func NewUnsupportedMediaTypeError(message string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusUnsupportedMediaType),
		Message:  message,
		Status:   http.StatusUnsupportedMediaType,
		Override: true,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusTooManyRequests),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}

// NewInternalServerError creates a 500 with the generic status text; the
// real cause only goes to the logs.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts the failures of a bound request body into a 400
// with one FieldError per failed rule, in the order they were reported.
func ValidationError(failures validation.ValidationErrors) *HTTPError {
	fieldErrors := make([]FieldError, 0, len(failures))
	for _, f := range failures {
		fieldErrors = append(fieldErrors, FieldError{
			Field: f.Field,
			Error: f.Message,
		})
	}

	code := "VALIDATION_FAILED"
	return NewBadRequestError("Validation failed", true, &code, fieldErrors, nil)
}

// FromBindError maps a terminal binder error onto its HTTP response.
// Errors the binder does not own become a 500.
func FromBindError(err error) *HTTPError {
	switch {
	case errors.Is(err, binding.ErrUnsupportedMediaType):
		return NewUnsupportedMediaTypeError("Content-Type must be application/json")

	case errors.Is(err, binding.ErrBodyTooLarge):
		return NewPayloadTooLargeError("Request body is too large")

	case errors.Is(err, binding.ErrMalformedBody):
		code := "MALFORMED_BODY"
		return NewBadRequestError("Request body is not valid JSON for this endpoint", true, &code, nil, nil)

	default:
		return NewInternalServerError()
	}
}
