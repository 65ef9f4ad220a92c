// Package errs defines the error shape every API response uses.
//
// HTTPError carries a status, a machine-readable code and, for invalid
// request bodies, one FieldError per failed rule so clients can point at
// the offending input.
package errs
