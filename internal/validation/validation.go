// Package validation contains the logic for validating
// request data.
//
// Rules are declared per field in an explicit, inspectable table
// (RuleSet) and executed by a single routine on top of the `validator`
// library. Failures are collected as field-level ValidationErrors in a
// format the client can understand.
package validation
