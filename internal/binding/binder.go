package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"

	"github.com/deppfellow/minivalidation/internal/validation"
)

// Binder binds request bodies to T and validates them with a RuleSet.
//
// A Binder holds no per-request state and is safe for concurrent use.
// T is expected to be a non-pointer type, usually a struct.
type Binder[T any] struct {
	rules     *validation.RuleSet[T]
	opts      Options
	hook      mapstructure.DecodeHookFunc
	matchName func(mapKey, fieldName string) bool
}

// New creates a Binder for T. rules may be nil when T only relies on
// its own Validate method, or on nothing at all.
func New[T any](rules *validation.RuleSet[T], opts Options) *Binder[T] {
	return &Binder[T]{
		rules:     rules,
		opts:      opts,
		hook:      decodeHook(opts.Converters),
		matchName: nameMatcher(opts.CaseSensitive, opts.NamingPolicy),
	}
}

// Bind is New(rules, opts).Bind(r) for one-off use.
func Bind[T any](r *http.Request, rules *validation.RuleSet[T], opts Options) (*Validated[T], error) {
	return New(rules, opts).Bind(r)
}

// Rules returns the rule table the binder validates with.
func (b *Binder[T]) Rules() *validation.RuleSet[T] {
	return b.rules
}

// Bind reads r's body as JSON into a T and validates it.
//
// It returns (nil, nil) when the body is empty or the JSON literal null.
// Terminal failures wrap ErrUnsupportedMediaType, ErrMalformedBody,
// ErrBodyTooLarge or the request context's error. The body is consumed once.
func (b *Binder[T]) Bind(r *http.Request) (*Validated[T], error) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx).With().
		Str("component", "binder").
		Str("type", reflect.TypeFor[T]().String()).
		Logger()

	// Fail fast if the request is already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bind request body: %w", err)
	}

	if err := checkContentType(r.Header.Get("Content-Type")); err != nil {
		logger.Debug().Err(err).Msg("request body rejected")
		return nil, err
	}

	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		logger.Debug().Msg("empty request body")
		return nil, nil
	}

	body, err := readBody(ctx, r.Body, b.opts.maxBodySize())
	if err != nil {
		logger.Debug().Err(err).Msg("request body rejected")
		return nil, err
	}

	if len(body) == 0 {
		logger.Debug().Msg("empty request body")
		return nil, nil
	}

	raw, err := parseJSON(body)
	if err != nil {
		logger.Debug().Err(err).Msg("request body rejected")
		return nil, err
	}

	if raw == nil {
		logger.Debug().Msg("null request body")
		return nil, nil
	}

	value, err := b.decode(raw)
	if err != nil {
		logger.Debug().Err(err).Msg("request body rejected")
		return nil, err
	}

	engine := b.opts.Engine
	if engine == nil {
		engine = validation.DefaultEngine()
	}

	result := newValidated(value, validation.Validate(engine, b.rules, &value))

	logger.Debug().
		Bool("valid", result.IsValid()).
		Int("error_count", len(result.errors)).
		Msg("request body bound")

	return result, nil
}

func (b *Binder[T]) decode(raw any) (T, error) {
	var out T

	if err := checkDuplicateKeys(raw, reflect.TypeFor[T](), b.matchName); err != nil {
		return out, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		TagName:     "json",
		Squash:      true,
		DecodeHook:  b.hook,
		ErrorUnused: b.opts.DisallowUnknownFields,
		MatchName:   b.matchName,
	})
	if err != nil {
		return out, fmt.Errorf("configure decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return out, nil
}

// checkContentType accepts application/json and application/*+json,
// ignoring parameters such as charset.
func checkContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf("%w: missing content-type header, expected application/json", ErrUnsupportedMediaType)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: invalid content-type %q: %v", ErrUnsupportedMediaType, contentType, err)
	}

	if mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")) {
		return nil
	}

	return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mediaType)
}

// readBody reads at most limit bytes, aborting when ctx is done.
//
// contextReader only sees ctx between reads. A Read already blocked on the
// connection is unblocked by closing the body once ctx is done, the same
// way net/http does when a client goes away.
func readBody(ctx context.Context, body io.Reader, limit int64) ([]byte, error) {
	if closer, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer stop()
	}

	// +1 byte to detect oversized bodies without reading them entirely.
	data, err := io.ReadAll(io.LimitReader(&contextReader{ctx: ctx, r: body}, limit+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read request body: %w", ctxErr)
		}

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrBodyTooLarge, maxErr.Limit)
		}

		return nil, fmt.Errorf("%w: failed to read request body: %v", ErrMalformedBody, err)
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrBodyTooLarge, limit)
	}

	return data, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// parseJSON decodes exactly one JSON value. Numbers stay json.Number so
// integers keep their precision until they reach their field.
func parseJSON(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	// Verify no trailing data exists after the JSON value.
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedBody)
	}

	return raw, nil
}
