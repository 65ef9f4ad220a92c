package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/minivalidation/internal/binding"
	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/validation"
)

func TestFromBindError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		"unsupported media type": {
			err:        fmt.Errorf("%w: got text/plain", binding.ErrUnsupportedMediaType),
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "UNSUPPORTED_MEDIA_TYPE",
		},
		"too large": {
			err:        fmt.Errorf("%w (max 10 bytes)", binding.ErrBodyTooLarge),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
		"malformed": {
			err:        fmt.Errorf("%w: unexpected EOF", binding.ErrMalformedBody),
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_BODY",
		},
		"anything else": {
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			httpErr := errs.FromBindError(tc.err)
			assert.Equal(t, tc.wantStatus, httpErr.Status)
			assert.Equal(t, tc.wantCode, httpErr.Code)
			assert.NotEmpty(t, httpErr.Message)
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	httpErr := errs.ValidationError(validation.ValidationErrors{
		{Field: "Name", Message: "is required"},
		{Field: "Email", Message: "must be a valid email address"},
	})

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "VALIDATION_FAILED", httpErr.Code)
	assert.True(t, httpErr.Override)
	assert.Equal(t, []errs.FieldError{
		{Field: "Name", Error: "is required"},
		{Field: "Email", Error: "must be a valid email address"},
	}, httpErr.Errors)
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	base := errs.NewNotFoundError("Contact not found", true, nil)
	assert.Equal(t, "NOT_FOUND", base.Code)
	assert.Equal(t, "Contact not found", base.Error())

	copied := base.WithMessage("Gone")
	assert.Equal(t, "Gone", copied.Message)
	assert.Equal(t, "Contact not found", base.Message)

	wrapped := fmt.Errorf("lookup: %w", base)
	require.ErrorIs(t, wrapped, &errs.HTTPError{})

	var target *errs.HTTPError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, http.StatusNotFound, target.Status)

	assert.Equal(t, "BAD_REQUEST", errs.MakeUpperCaseWithUnderscores("Bad Request"))
}
