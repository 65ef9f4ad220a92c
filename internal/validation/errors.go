package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single failed rule for a specific field.
//
// Field is empty for object-level failures reported by Validatable types.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors is an ordered list of validation failures that satisfies error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "Validation failed"
	}

	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

// fromError converts whatever a Validatable returned into ValidationErrors.
//
// validator.ValidationErrors (from calling validator.Struct inside Validate)
// are translated with the same default messages the rule table uses.
func fromError(err error) ValidationErrors {
	var list ValidationErrors
	if errors.As(err, &list) {
		return list
	}

	var single ValidationError
	if errors.As(err, &single) {
		return ValidationErrors{single}
	}

	var tagErrors validator.ValidationErrors
	if errors.As(err, &tagErrors) {
		out := make(ValidationErrors, 0, len(tagErrors))
		for _, fe := range tagErrors {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: render(messageForTag(fe.Tag(), fe.Param(), fe.Kind()), fe.Field(), fe.Param()),
			})
		}
		return out
	}

	return ValidationErrors{{Message: err.Error()}}
}
