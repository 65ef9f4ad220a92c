// Package binding turns an inbound JSON request body into a Validated value.
//
// A bind attempt has three outcomes:
//   - a terminal error (unsupported media type, malformed body, oversized
//     body, cancelled request) that aborts the attempt;
//   - absence (nil result, nil error) for an empty body or a JSON null;
//   - a Validated[T] that is either valid with the decoded value or invalid
//     with the ordered list of rule failures.
//
// Rule failures are data, never errors: callers can always tell "could not
// even attempt validation" from "attempted and failed validation".
package binding

import "errors"

// Terminal bind failures. Test with errors.Is.
var (
	// ErrUnsupportedMediaType indicates the Content-Type is missing or not JSON.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMalformedBody indicates the body is not a single well-formed JSON
	// value or does not fit the target type.
	ErrMalformedBody = errors.New("malformed JSON request body")

	// ErrBodyTooLarge indicates the body exceeds Options.MaxBodySize.
	ErrBodyTooLarge = errors.New("request body too large")
)
