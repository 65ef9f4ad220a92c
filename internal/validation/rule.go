package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Rule kinds. Most map one-to-one onto a validator tag.
const (
	KindRequired  = "required"
	KindNotBlank  = "notblank"
	KindOmitEmpty = "omitempty"
	KindMinLength = "min_length"
	KindMaxLength = "max_length"
	KindLength    = "length"
	KindMin       = "min"
	KindMax       = "max"
	KindRange     = "range"
	KindPattern   = "pattern"
	KindEmail     = "email"
	KindURL       = "url"
	KindUUID      = "uuid"
	KindOneOf     = "oneof"
	KindDive      = "dive"
)

// Rule is a single named check attached to a field: its kind, its
// parameters and the message template used when it fails.
//
// Message templates may reference {field} and {param}.
type Rule struct {
	Kind    string
	Param   string
	Message string

	// tag is the validator tag executed for this rule.
	tag string
}

// WithMessage returns a copy of the rule using the given message template.
func (r Rule) WithMessage(template string) Rule {
	r.Message = template
	return r
}

// Tag returns the validator tag the rule executes.
func (r Rule) Tag() string {
	return r.tag
}

// presence rules fail on absent values and stop evaluation of the field.
func (r Rule) presence() bool {
	return r.Kind == KindRequired || r.Kind == KindNotBlank
}

func (r Rule) failure(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: render(r.Message, field, r.Param),
	}
}

// Required fails when the value is absent, null or the zero value
// (empty string, 0, nil slice...).
func Required() Rule {
	return Rule{Kind: KindRequired, Message: "is required", tag: "required"}
}

// NotBlank fails when the value is absent or a string made only of whitespace.
func NotBlank() Rule {
	return Rule{Kind: KindNotBlank, Message: "must not be blank", tag: "notblank"}
}

// OmitEmpty stops evaluation of the remaining rules when the value is the zero value.
func OmitEmpty() Rule {
	return Rule{Kind: KindOmitEmpty, tag: "omitempty"}
}

func MinLength(n int) Rule {
	p := strconv.Itoa(n)
	return Rule{Kind: KindMinLength, Param: p, Message: "must be at least {param} characters", tag: "min=" + p}
}

func MaxLength(n int) Rule {
	p := strconv.Itoa(n)
	return Rule{Kind: KindMaxLength, Param: p, Message: "must not exceed {param} characters", tag: "max=" + p}
}

func Length(n int) Rule {
	p := strconv.Itoa(n)
	return Rule{Kind: KindLength, Param: p, Message: "must be exactly {param} characters", tag: "len=" + p}
}

// Min checks a numeric lower bound (inclusive).
func Min(n float64) Rule {
	p := formatNumber(n)
	return Rule{Kind: KindMin, Param: p, Message: "must be at least {param}", tag: "gte=" + p}
}

// Max checks a numeric upper bound (inclusive).
func Max(n float64) Rule {
	p := formatNumber(n)
	return Rule{Kind: KindMax, Param: p, Message: "must not exceed {param}", tag: "lte=" + p}
}

// Range checks that a number lies within [lo, hi].
func Range(lo, hi float64) Rule {
	l, h := formatNumber(lo), formatNumber(hi)
	return Rule{
		Kind:    KindRange,
		Param:   l + "," + h,
		Message: fmt.Sprintf("must be between %s and %s", l, h),
		tag:     "gte=" + l + ",lte=" + h,
	}
}

// Pattern checks a string against a regular expression. The expression is
// compiled here so malformed patterns are caught when the table is declared.
func Pattern(expr string) Rule {
	if _, err := compilePattern(expr); err != nil {
		panic(fmt.Sprintf("validation: invalid pattern %q: %v", expr, err))
	}
	return Rule{Kind: KindPattern, Param: expr, Message: "has an invalid format", tag: "pattern=" + escapeParam(expr)}
}

func Email() Rule {
	return Rule{Kind: KindEmail, Message: "must be a valid email address", tag: "email"}
}

func URL() Rule {
	return Rule{Kind: KindURL, Message: "must be a valid URL", tag: "url"}
}

func UUID() Rule {
	return Rule{Kind: KindUUID, Message: "must be a valid UUID", tag: "uuid"}
}

// OneOf restricts a value to a fixed set.
func OneOf(values ...string) Rule {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if strings.ContainsAny(v, " \t") {
			v = "'" + v + "'"
		}
		quoted = append(quoted, escapeParam(v))
	}
	return Rule{
		Kind:    KindOneOf,
		Param:   strings.Join(values, ", "),
		Message: "must be one of: {param}",
		tag:     "oneof=" + strings.Join(quoted, " "),
	}
}

// Tag wraps any validator tag (e.g. "e164", "gtfield=Start") as a rule.
func Tag(tag string) Rule {
	name, param, _ := strings.Cut(tag, "=")
	switch name {
	case "required":
		return Required()
	case "notblank":
		return NotBlank()
	case "omitempty":
		return OmitEmpty()
	}
	return Rule{Kind: name, Param: param, Message: messageForTag(name, param, reflect.Invalid), tag: tag}
}

// messageForTag returns the default template for a validator tag. kind is
// the kind of the validated value when known; it decides whether min/max
// speak about characters or values.
func messageForTag(tag, param string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return "is required"

	case "notblank":
		return "must not be blank"

	case "min", "gte":
		if kind == reflect.String {
			return "must be at least {param} characters"
		}
		return "must be at least {param}"

	case "max", "lte":
		if kind == reflect.String {
			return "must not exceed {param} characters"
		}
		return "must not exceed {param}"

	case "len":
		if kind == reflect.String {
			return "must be exactly {param} characters"
		}
		return "must have length {param}"

	case "gt":
		return "must be greater than {param}"

	case "lt":
		return "must be less than {param}"

	case "oneof":
		return "must be one of: {param}"

	case "email":
		return "must be a valid email address"

	case "url":
		return "must be a valid URL"

	case "uuid":
		return "must be a valid UUID"

	case "e164":
		return "must be a valid phone number with country code"

	case "pattern":
		return "has an invalid format"

	case "dive":
		return "has an invalid element"

	default:
		if param != "" {
			return fmt.Sprintf("failed on the '%s' rule (%s)", tag, param)
		}
		return fmt.Sprintf("failed on the '%s' rule", tag)
	}
}

func render(template, field, param string) string {
	return strings.NewReplacer("{field}", field, "{param}", param).Replace(template)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// escapeParam hides the validator tag separators inside a parameter.
// The validator turns 0x2C and 0x7C back into ',' and '|'.
func escapeParam(p string) string {
	return strings.NewReplacer(",", "0x2C", "|", "0x7C").Replace(p)
}
