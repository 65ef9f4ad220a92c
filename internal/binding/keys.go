package binding

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// checkDuplicateKeys walks raw alongside t and fails when two keys of one
// JSON object match the same struct field. The parsed object has no key
// order, so letting the decoder pick one would make the bind depend on map
// iteration.
func checkDuplicateKeys(raw any, t reflect.Type, match func(mapKey, fieldName string) bool) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil
		}
		return checkStructKeys(obj, t, match)

	case reflect.Slice, reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return nil
		}
		for _, item := range items {
			if err := checkDuplicateKeys(item, t.Elem(), match); err != nil {
				return err
			}
		}

	case reflect.Map:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil
		}
		for _, v := range obj {
			if err := checkDuplicateKeys(v, t.Elem(), match); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkStructKeys(obj map[string]any, t reflect.Type, match func(mapKey, fieldName string) bool) error {
	keys := slices.Sorted(maps.Keys(obj))

	for i := range t.NumField() {
		sf := t.Field(i)

		name, squash, skip := jsonFieldName(sf)
		if skip {
			continue
		}

		if squash {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if err := checkStructKeys(obj, embedded, match); err != nil {
				return err
			}
			continue
		}

		var matched []string
		for _, key := range keys {
			if match(key, name) {
				matched = append(matched, key)
			}
		}

		switch len(matched) {
		case 0:
		case 1:
			if err := checkDuplicateKeys(obj[matched[0]], sf.Type, match); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: keys %s all match field %s", ErrMalformedBody, strings.Join(quoteAll(matched), ", "), sf.Name)
		}
	}

	return nil
}

// jsonFieldName mirrors how the decoder names a field: the json tag name,
// or the Go name without one. Embedded structs are squashed into their
// parent.
func jsonFieldName(sf reflect.StructField) (name string, squash, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	tagName, opts, _ := strings.Cut(tag, ",")

	embedded := sf.Type
	if embedded.Kind() == reflect.Pointer {
		embedded = embedded.Elem()
	}
	if embedded.Kind() == reflect.Struct &&
		(sf.Anonymous || slices.Contains(strings.Split(opts, ","), "squash")) {
		return "", true, false
	}

	if !sf.IsExported() {
		return "", false, true
	}

	if tagName != "" {
		return tagName, false, false
	}
	return sf.Name, false, false
}

func quoteAll(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%q", k)
	}
	return out
}
