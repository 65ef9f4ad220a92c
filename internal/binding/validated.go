package binding

import "github.com/deppfellow/minivalidation/internal/validation"

// Validated is the result of binding a request body to T.
//
// It is built once per bind attempt and never mutated afterwards.
// IsValid reports whether Errors is empty; Value is the zero T when invalid.
type Validated[T any] struct {
	value  T
	errors validation.ValidationErrors
}

func newValidated[T any](value T, errs validation.ValidationErrors) *Validated[T] {
	if len(errs) > 0 {
		var zero T
		return &Validated[T]{value: zero, errors: errs}
	}
	return &Validated[T]{value: value}
}

// Value returns the decoded payload. Only meaningful when IsValid is true.
func (v *Validated[T]) Value() T {
	return v.value
}

// IsValid reports whether every rule passed.
func (v *Validated[T]) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns a copy of the rule failures in evaluation order.
func (v *Validated[T]) Errors() validation.ValidationErrors {
	if len(v.errors) == 0 {
		return validation.ValidationErrors{}
	}
	out := make(validation.ValidationErrors, len(v.errors))
	copy(out, v.errors)
	return out
}
