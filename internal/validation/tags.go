package validation

import (
	"fmt"
	"reflect"
	"strings"
)

// RulesFromTags builds a RuleSet for T from `validate:"..."` struct tags.
//
// The struct is inspected once, here; the returned table is plain data and is
// evaluated like any hand-written RuleSet. Fields are taken in declaration
// order and reported under their Go name. Nested structs are not walked.
//
//	type CreateUser struct {
//		Name  *string `json:"name" validate:"required,max=100"`
//		Email string  `json:"email" validate:"required,email"`
//	}
func RulesFromTags[T any]() (*RuleSet[T], error) {
	return RulesFromTagsWith[T](defaultEngine)
}

// RulesFromTagsWith is RulesFromTags checking tags against e, for tags that
// use validations registered on e.
func RulesFromTagsWith[T any](e *Engine) (*RuleSet[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: %s is not a struct", t)
	}

	fields := make([]FieldRules[T], 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("validate")
		if tag == "" || tag == "-" {
			continue
		}

		kind := sf.Type.Kind()
		if kind == reflect.Pointer {
			kind = sf.Type.Elem().Kind()
		}
		sample := reflect.Zero(sf.Type).Interface()
		if sf.Type.Kind() == reflect.Pointer {
			sample = reflect.Zero(sf.Type.Elem()).Interface()
		}

		var rules []Rule
		tokens := strings.Split(tag, ",")
		for i, token := range tokens {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}

			// dive applies the tags after it to the elements, so the rest
			// of the tag has to run as one rule.
			if token == "dive" {
				rule := diveRule(strings.Join(tokens[i:], ","))
				if err := e.Supports(rule.tag, sample); err != nil {
					return nil, fmt.Errorf("field %s: %w", sf.Name, err)
				}
				rules = append(rules, rule)
				break
			}

			rule := Tag(token)
			if !rule.presence() && rule.Kind != KindOmitEmpty {
				rule.Message = messageForTag(rule.Kind, rule.Param, kind)
				if err := e.Supports(rule.tag, sample); err != nil {
					return nil, fmt.Errorf("field %s: %w", sf.Name, err)
				}
			}
			rules = append(rules, rule)
		}

		index := sf.Index
		fields = append(fields, Field(sf.Name, func(v *T) any {
			return reflect.ValueOf(v).Elem().FieldByIndex(index).Interface()
		}, rules...))
	}

	return NewRuleSet(fields...), nil
}

// diveRule runs a dive tag, and everything after it, on the elements of a
// slice, array or map.
func diveRule(tag string) Rule {
	_, param, _ := strings.Cut(tag, ",")
	message := messageForTag(KindDive, param, reflect.Invalid)
	if strings.HasPrefix(param, "keys") {
		message = "has an invalid key or value"
	}
	return Rule{Kind: KindDive, Param: param, Message: message, tag: tag}
}

// MustRulesFromTags is RulesFromTags for package-level tables; it panics on error.
func MustRulesFromTags[T any]() *RuleSet[T] {
	rs, err := RulesFromTags[T]()
	if err != nil {
		panic(err)
	}
	return rs
}
