package binding

import (
	"fmt"
	"strings"
	"unicode"
)

// NamingPolicy describes how JSON property names are derived from field names.
type NamingPolicy string

const (
	NamingNone  NamingPolicy = ""
	NamingCamel NamingPolicy = "camel"
	NamingSnake NamingPolicy = "snake"
	NamingKebab NamingPolicy = "kebab"
)

// ParseNamingPolicy validates a policy name coming from configuration.
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch p := NamingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case NamingNone, NamingCamel, NamingSnake, NamingKebab:
		return p, nil
	default:
		return NamingNone, fmt.Errorf("unknown naming policy %q (must be one of: camel, snake, kebab)", s)
	}
}

// Convert applies the policy to a field name, e.g. snake turns "FirstName"
// into "first_name".
func (p NamingPolicy) Convert(name string) string {
	if p == NamingNone {
		return name
	}

	words := splitWords(name)
	if len(words) == 0 {
		return name
	}

	switch p {
	case NamingCamel:
		var b strings.Builder
		for i, w := range words {
			w = strings.ToLower(w)
			if i > 0 {
				r := []rune(w)
				r[0] = unicode.ToUpper(r[0])
				w = string(r)
			}
			b.WriteString(w)
		}
		return b.String()
	case NamingSnake:
		return strings.ToLower(strings.Join(words, "_"))
	case NamingKebab:
		return strings.ToLower(strings.Join(words, "-"))
	default:
		return name
	}
}

// splitWords breaks an identifier on separators and case changes.
// Acronyms stay together: "HTTPServerID" -> HTTP, Server, ID.
func splitWords(s string) []string {
	runes := []rune(s)

	var (
		words []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsDigit(prev):
			flush(i)
			start = i
		}
	}
	flush(len(runes))

	return words
}

// nameMatcher returns the mapstructure MatchName function for the options.
// fieldName is the json tag name or, without one, the Go field name.
func nameMatcher(caseSensitive bool, policy NamingPolicy) func(mapKey, fieldName string) bool {
	eq := strings.EqualFold
	if caseSensitive {
		eq = func(a, b string) bool { return a == b }
	}

	return func(mapKey, fieldName string) bool {
		if eq(mapKey, fieldName) {
			return true
		}
		return policy != NamingNone && eq(mapKey, policy.Convert(fieldName))
	}
}
