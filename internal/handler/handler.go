// Package handler is the HTTP layer, the first entry point after the router.
//
// Endpoints that accept a body are built with Handle or HandleNoContent:
// the body is bound and validated against the endpoint's rule table before
// the typed endpoint function runs, and every outcome of binding maps to a
// consistent response.
package handler
