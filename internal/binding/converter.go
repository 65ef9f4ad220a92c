package binding

import (
	"encoding/json"
	"fmt"
	"html"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Converter transforms decoded JSON values on their way into the target type.
//
// value is what the JSON parser produced (string, json.Number, bool,
// map[string]any, []any) or what a previous converter returned.
type Converter interface {
	CanConvert(target reflect.Type) bool
	Convert(value any, target reflect.Type) (any, error)
}

var stringType = reflect.TypeFor[string]()

type stringConverter struct {
	fn func(string) (string, error)
}

// StringConverter builds a Converter applied to every JSON string decoded
// into a string field.
func StringConverter(fn func(string) (string, error)) Converter {
	return stringConverter{fn: fn}
}

func (c stringConverter) CanConvert(target reflect.Type) bool {
	return target == stringType
}

func (c stringConverter) Convert(value any, _ reflect.Type) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return c.fn(s)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Converter{
		"trim_space": StringConverter(func(s string) (string, error) {
			return strings.TrimSpace(s), nil
		}),
		"html_escape": StringConverter(func(s string) (string, error) {
			return html.EscapeString(s), nil
		}),
	}
)

// RegisterConverter makes a converter selectable by name from configuration.
func RegisterConverter(name string, c Converter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = c
}

// LookupConverters resolves converter names in order.
func LookupConverters(names []string) ([]Converter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Converter, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown converter %q (registered: %s)", name, strings.Join(registeredNames(), ", "))
		}
		out = append(out, c)
	}
	return out, nil
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeHook chains the configured converters with the built-in hooks.
func decodeHook(converters []Converter) mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(converters)+2)
	for _, c := range converters {
		hooks = append(hooks, converterHook(c))
	}
	hooks = append(hooks,
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.DecodeHookFuncType(rejectNumberAsString),
		mapstructure.DecodeHookFuncType(rejectNumberOverflow),
	)
	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

func converterHook(c Converter) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		if !c.CanConvert(to.Type()) {
			return from.Interface(), nil
		}
		out, err := c.Convert(from.Interface(), to.Type())
		if err != nil {
			return nil, err
		}
		// The following hooks cannot take an untyped nil.
		if out == nil {
			return reflect.Zero(to.Type()).Interface(), nil
		}
		return out, nil
	}
}

var numberType = reflect.TypeFor[json.Number]()

// rejectNumberAsString keeps JSON numbers out of string fields; the decoder
// would otherwise accept them since json.Number is a string underneath.
func rejectNumberAsString(from, to reflect.Type, data any) (any, error) {
	if from == numberType && to.Kind() == reflect.String && to != numberType {
		return nil, fmt.Errorf("cannot decode number %v into %s", data, to)
	}
	return data, nil
}

// rejectNumberOverflow fails numbers that do not fit their field. The
// decoder converts through int64, uint64 and float64 and would otherwise
// wrap 300 into an int8 as 44.
func rejectNumberOverflow(from, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok || from != numberType {
		return data, nil
	}

	var err error
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, err = strconv.ParseInt(n.String(), 10, to.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, err = strconv.ParseUint(n.String(), 10, to.Bits())
	case reflect.Float32:
		_, err = strconv.ParseFloat(n.String(), 32)
	default:
		return data, nil
	}

	if err != nil {
		return nil, fmt.Errorf("cannot decode number %s into %s: %w", n, to, err)
	}
	return data, nil
}
