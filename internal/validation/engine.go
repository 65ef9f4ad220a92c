package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Engine executes rules. It owns a lazily built validator instance with the
// custom validations rules rely on (pattern, notblank).
//
// An Engine is safe for concurrent use.
type Engine struct {
	once     sync.Once
	validate *validator.Validate
}

var defaultEngine = &Engine{}

// NewEngine creates an Engine with its own validator instance.
func NewEngine() *Engine {
	return &Engine{}
}

// DefaultEngine returns the shared Engine used when none is supplied.
func DefaultEngine() *Engine {
	return defaultEngine
}

func (e *Engine) lazyInit() {
	e.once.Do(func() {
		v := validator.New()
		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation("pattern", validatePattern)
		_ = v.RegisterValidation("notblank", validateNotBlank)
		e.validate = v
	})
}

// Validator returns the underlying validator so callers can register
// their own validations (usable through Tag).
func (e *Engine) Validator() *validator.Validate {
	e.lazyInit()
	return e.validate
}

// Supports reports whether a tag can be executed, e.g. an unknown
// validation name or a malformed parameter is rejected.
func (e *Engine) Supports(tag string, sample any) (err error) {
	e.lazyInit()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation: unsupported tag %q: %v", tag, r)
		}
	}()
	_ = e.validate.Var(sample, tag)
	return nil
}

// check runs a single rule against a present, dereferenced value.
func (e *Engine) check(rule Rule, value any) bool {
	return e.validate.Var(value, rule.tag) == nil
}

// validateField evaluates the rules of one field in declaration order.
//
// Absent values (nil pointers, nil interfaces) only fail presence rules.
// A failing presence rule ends the field, so a missing required value is
// reported once whatever the other rules say.
func (e *Engine) validateField(name string, raw any, rules []Rule) ValidationErrors {
	value, present := indirect(raw)

	var out ValidationErrors
	for _, rule := range rules {
		if rule.Kind == KindOmitEmpty {
			if !present || reflect.ValueOf(value).IsZero() {
				return out
			}
			continue
		}

		if !present {
			if rule.presence() {
				return append(out, rule.failure(name))
			}
			continue
		}

		if e.check(rule, value) {
			continue
		}

		out = append(out, rule.failure(name))
		if rule.presence() {
			return out
		}
	}

	return out
}

// Validate runs the rule table against obj and, when every field passed,
// the object's own Validate method. Errors come back in table order.
func Validate[T any](e *Engine, rules *RuleSet[T], obj *T) ValidationErrors {
	if e == nil {
		e = defaultEngine
	}
	e.lazyInit()

	var out ValidationErrors
	if rules != nil {
		for _, f := range rules.fields {
			out = append(out, e.validateField(f.name, f.get(obj), f.rules)...)
		}
	}

	if len(out) > 0 {
		return out
	}

	if v, ok := any(obj).(Validatable); ok {
		if err := v.Validate(); err != nil {
			out = append(out, fromError(err)...)
		}
	}

	return out
}

// indirect follows pointers and interfaces. It reports false when it hits nil.
func indirect(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}
	return rv.Interface(), true
}

var patternCache sync.Map // string -> *regexp.Regexp

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patternCache.Store(expr, re)
	return re, nil
}

func validatePattern(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	re, err := compilePattern(fl.Param())
	if err != nil {
		return false
	}
	return re.MatchString(field.String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() > 0
	default:
		return !field.IsZero()
	}
}
