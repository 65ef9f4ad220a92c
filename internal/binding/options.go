package binding

import (
	"github.com/deppfellow/minivalidation/internal/config"
	"github.com/deppfellow/minivalidation/internal/validation"
)

// DefaultMaxBodySize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxBodySize = 1 << 20

// Options is the JSON configuration a Binder decodes with. The zero value
// gives the defaults: case-insensitive property matching, no naming policy,
// no converters, unknown properties ignored, 1MB body cap.
type Options struct {
	// Converters run in order on every decoded value they accept.
	Converters []Converter

	// CaseSensitive requires property names to match exactly.
	CaseSensitive bool

	// NamingPolicy lets properties also match the policy form of a field name.
	NamingPolicy NamingPolicy

	// MaxBodySize caps the body; <= 0 means DefaultMaxBodySize.
	MaxBodySize int64

	// DisallowUnknownFields rejects properties that match no field.
	DisallowUnknownFields bool

	// Engine executes the rule table; nil means validation.DefaultEngine().
	Engine *validation.Engine
}

func (o Options) maxBodySize() int64 {
	if o.MaxBodySize <= 0 {
		return DefaultMaxBodySize
	}
	return o.MaxBodySize
}

// NewOptions builds Options from the binding section of the configuration.
func NewOptions(cfg config.BindingConfig) (Options, error) {
	policy, err := ParseNamingPolicy(cfg.NamingPolicy)
	if err != nil {
		return Options{}, err
	}

	converters, err := LookupConverters(cfg.Converters)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Converters:            converters,
		CaseSensitive:         cfg.CaseSensitive,
		NamingPolicy:          policy,
		MaxBodySize:           cfg.MaxBodySize,
		DisallowUnknownFields: cfg.DisallowUnknownFields,
	}, nil
}
