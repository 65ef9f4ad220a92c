package binding_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/minivalidation/internal/binding"
	"github.com/deppfellow/minivalidation/internal/validation"
)

type testType struct {
	Name *string
}

var testRules = validation.NewRuleSet(
	validation.Field("Name", func(t *testType) any { return t.Name }, validation.Required()),
)

func newJSONRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestBind_valid_json(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"exact case": `{"Name":"Test Value"}`,
		"lower case": `{"name":"Test Value"}`,
		"upper case": `{"NAME":"Test Value"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind(newJSONRequest(body), testRules, binding.Options{})
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.True(t, result.IsValid())
			assert.Empty(t, result.Errors())
			require.NotNil(t, result.Value().Name)
			assert.Equal(t, "Test Value", *result.Value().Name)
		})
	}
}

func TestBind_invalid_json(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body      string
		wantCount int
	}{
		"empty string":   {body: `{"Name":""}`, wantCount: 1},
		"wrong property": {body: `{"WrongName":"A value"}`, wantCount: 1},
		"null property":  {body: `{"Name":null}`, wantCount: 1},
		"empty object":   {body: `{}`, wantCount: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind(newJSONRequest(tc.body), testRules, binding.Options{})
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.False(t, result.IsValid())
			require.Len(t, result.Errors(), tc.wantCount)
			assert.Equal(t, "Name", result.Errors()[0].Field)
			assert.Equal(t, "is required", result.Errors()[0].Message)
			assert.Nil(t, result.Value().Name)
		})
	}
}

func TestBind_absent(t *testing.T) {
	t.Parallel()

	tests := map[string]func() *http.Request{
		"json null": func() *http.Request {
			return newJSONRequest("null")
		},
		"empty body": func() *http.Request {
			return newJSONRequest("")
		},
		"no body": func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Content-Type", "application/json")
			return req
		},
		"unknown length, no bytes": func() *http.Request {
			req := newJSONRequest("")
			req.Body = io.NopCloser(strings.NewReader(""))
			req.ContentLength = -1
			return req
		},
	}

	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind(build(), testRules, binding.Options{})
			require.NoError(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestBind_unsupported_media_type(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		contentType string
		body        string
	}{
		"text plain":        {contentType: "text/plain", body: `{"Name":"x"}`},
		"missing":           {contentType: "", body: `{"Name":"x"}`},
		"form":              {contentType: "application/x-www-form-urlencoded", body: "Name=x"},
		"text plain, empty": {contentType: "text/plain", body: ""},
		"garbage":           {contentType: ";;;", body: `{"Name":"x"}`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}

			result, err := binding.Bind(req, testRules, binding.Options{})
			require.ErrorIs(t, err, binding.ErrUnsupportedMediaType)
			assert.Nil(t, result)
		})
	}
}

func TestBind_accepted_media_types(t *testing.T) {
	t.Parallel()

	for _, contentType := range []string{
		"application/json",
		"application/json; charset=utf-8",
		"Application/JSON",
		"application/problem+json",
	} {
		t.Run(contentType, func(t *testing.T) {
			t.Parallel()

			req := newJSONRequest(`{"Name":"x"}`)
			req.Header.Set("Content-Type", contentType)

			result, err := binding.Bind(req, testRules, binding.Options{})
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsValid())
		})
	}
}

func TestBind_malformed_body(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"truncated":         `{"Name":`,
		"not json":          `Name=value`,
		"trailing data":     `{"Name":"x"} {}`,
		"whitespace only":   "   ",
		"number for string": `{"Name":42}`,
		"array for object":  `[{"Name":"x"}]`,
		"string for object": `"Name"`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind(newJSONRequest(body), testRules, binding.Options{})
			require.ErrorIs(t, err, binding.ErrMalformedBody)
			assert.Nil(t, result)
		})
	}
}

func TestBind_uses_configured_converters(t *testing.T) {
	t.Parallel()

	suffix := strconv.FormatInt(time.Now().UnixNano(), 10)
	opts := binding.Options{
		Converters: []binding.Converter{
			binding.StringConverter(func(s string) (string, error) { return s + suffix, nil }),
		},
	}

	req := newJSONRequest(`{"name":"test"}`)
	req.ContentLength = -1

	result, err := binding.Bind(req, testRules, opts)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.IsValid())
	require.NotNil(t, result.Value().Name)
	assert.Equal(t, "test"+suffix, *result.Value().Name)
}

func TestBind_converters_run_in_order(t *testing.T) {
	t.Parallel()

	opts := binding.Options{
		Converters: []binding.Converter{
			binding.StringConverter(func(s string) (string, error) { return strings.TrimSpace(s), nil }),
			binding.StringConverter(func(s string) (string, error) { return "[" + s + "]", nil }),
		},
	}

	result, err := binding.Bind(newJSONRequest(`{"Name":"  padded  "}`), testRules, opts)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "[padded]", *result.Value().Name)
}

func TestBind_converter_error_is_malformed(t *testing.T) {
	t.Parallel()

	opts := binding.Options{
		Converters: []binding.Converter{
			binding.StringConverter(func(string) (string, error) { return "", errors.New("nope") }),
		},
	}

	_, err := binding.Bind(newJSONRequest(`{"Name":"x"}`), testRules, opts)
	require.ErrorIs(t, err, binding.ErrMalformedBody)
}

func TestBind_case_sensitive(t *testing.T) {
	t.Parallel()

	opts := binding.Options{CaseSensitive: true}

	result, err := binding.Bind(newJSONRequest(`{"Name":"x"}`), testRules, opts)
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	result, err = binding.Bind(newJSONRequest(`{"name":"x"}`), testRules, opts)
	require.NoError(t, err)
	assert.False(t, result.IsValid())
	assert.Len(t, result.Errors(), 1)
}

type profile struct {
	FirstName string
	HomeURL   string `json:"homeUrl"`
}

func TestBind_naming_policy(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		policy binding.NamingPolicy
		body   string
	}{
		"snake": {policy: binding.NamingSnake, body: `{"first_name":"Ada","homeUrl":"x"}`},
		"kebab": {policy: binding.NamingKebab, body: `{"first-name":"Ada","homeUrl":"x"}`},
		"camel": {policy: binding.NamingCamel, body: `{"firstName":"Ada","homeUrl":"x"}`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind[profile](newJSONRequest(tc.body), nil, binding.Options{
				CaseSensitive: true,
				NamingPolicy:  tc.policy,
			})
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Ada", result.Value().FirstName)
			assert.Equal(t, "x", result.Value().HomeURL)
		})
	}
}

func TestBind_disallow_unknown_fields(t *testing.T) {
	t.Parallel()

	body := `{"Name":"x","Extra":1}`

	result, err := binding.Bind(newJSONRequest(body), testRules, binding.Options{})
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	_, err = binding.Bind(newJSONRequest(body), testRules, binding.Options{DisallowUnknownFields: true})
	require.ErrorIs(t, err, binding.ErrMalformedBody)
}

func TestBind_body_too_large(t *testing.T) {
	t.Parallel()

	body := `{"Name":"` + strings.Repeat("a", 64) + `"}`

	_, err := binding.Bind(newJSONRequest(body), testRules, binding.Options{MaxBodySize: 16})
	require.ErrorIs(t, err, binding.ErrBodyTooLarge)

	req := newJSONRequest(body)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 16)
	_, err = binding.Bind(req, testRules, binding.Options{})
	require.ErrorIs(t, err, binding.ErrBodyTooLarge)
}

func TestBind_cancelled_before_read(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := newJSONRequest(`{"Name":"x"}`).WithContext(ctx)

	result, err := binding.Bind(req, testRules, binding.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

// cancellingReader cancels the request while the body is being read.
type cancellingReader struct {
	cancel context.CancelFunc
	chunks []string
}

func (r *cancellingReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	r.cancel()
	return n, nil
}

func TestBind_cancelled_during_read(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req := newJSONRequest("").WithContext(ctx)
	req.Body = io.NopCloser(&cancellingReader{cancel: cancel, chunks: []string{`{"Na`, `me":"x"}`}})
	req.ContentLength = -1

	result, err := binding.Bind(req, testRules, binding.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

type contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
	Phone *string
}

var contactRules = validation.NewRuleSet(
	validation.Field("Name", func(c *contact) any { return c.Name }, validation.Required(), validation.MaxLength(5)),
	validation.Field("Email", func(c *contact) any { return c.Email }, validation.Required(), validation.Email()),
	validation.Field("Age", func(c *contact) any { return c.Age }, validation.Range(18, 150)),
	validation.Field("Phone", func(c *contact) any { return c.Phone }, validation.Pattern(`^\+[0-9]{6,15}$`)),
)

func TestBind_errors_follow_table_order(t *testing.T) {
	t.Parallel()

	body := `{"name":"Alexander","email":"nope","age":12,"phone":"555"}`

	result, err := binding.Bind(newJSONRequest(body), contactRules, binding.Options{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.IsValid())
	assert.Equal(t, validation.ValidationErrors{
		{Field: "Name", Message: "must not exceed 5 characters"},
		{Field: "Email", Message: "must be a valid email address"},
		{Field: "Age", Message: "must be between 18 and 150"},
		{Field: "Phone", Message: "has an invalid format"},
	}, result.Errors())
	assert.Equal(t, contact{}, result.Value())
}

func TestBind_numbers(t *testing.T) {
	t.Parallel()

	type payload struct {
		Count int64
		Ratio float64
	}

	result, err := binding.Bind[payload](newJSONRequest(`{"count":9007199254740993,"ratio":0.25}`), nil, binding.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), result.Value().Count)
	assert.InDelta(t, 0.25, result.Value().Ratio, 1e-9)

	_, err = binding.Bind[payload](newJSONRequest(`{"count":1.5}`), nil, binding.Options{})
	require.ErrorIs(t, err, binding.ErrMalformedBody)
}

func TestBind_text_unmarshaler_fields(t *testing.T) {
	t.Parallel()

	type event struct {
		At time.Time `json:"at"`
	}

	result, err := binding.Bind[event](newJSONRequest(`{"at":"2024-05-01T10:00:00Z"}`), nil, binding.Options{})
	require.NoError(t, err)
	assert.True(t, result.Value().At.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

type window struct {
	Start int
	End   int
}

func (w *window) Validate() error {
	if w.End < w.Start {
		return validation.ValidationError{Field: "End", Message: "must not be before Start"}
	}
	return nil
}

func TestBind_runs_object_validation(t *testing.T) {
	t.Parallel()

	result, err := binding.Bind[window](newJSONRequest(`{"start":5,"end":1}`), nil, binding.Options{})
	require.NoError(t, err)
	assert.Equal(t, validation.ValidationErrors{{Field: "End", Message: "must not be before Start"}}, result.Errors())

	result, err = binding.Bind[window](newJSONRequest(`{"start":1,"end":5}`), nil, binding.Options{})
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidated_errors_are_copied(t *testing.T) {
	t.Parallel()

	result, err := binding.Bind(newJSONRequest(`{}`), testRules, binding.Options{})
	require.NoError(t, err)

	errs := result.Errors()
	errs[0].Message = "changed"

	assert.Equal(t, "is required", result.Errors()[0].Message)
}

func TestBinder_reusable_across_requests(t *testing.T) {
	t.Parallel()

	b := binding.New(testRules, binding.Options{})
	assert.Same(t, testRules, b.Rules())

	for i := range 5 {
		result, err := b.Bind(newJSONRequest(`{"name":"n` + strconv.Itoa(i) + `"}`))
		require.NoError(t, err)
		assert.Equal(t, "n"+strconv.Itoa(i), *result.Value().Name)
	}
}

type limits struct {
	Count int8
	Port  uint16
	Ratio float32
	Total int64
}

func TestBind_number_out_of_range(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"int overflow":      `{"Count":300}`,
		"int underflow":     `{"Count":-129}`,
		"uint overflow":     `{"Port":70000}`,
		"negative uint":     `{"Port":-1}`,
		"float32 overflow":  `{"Ratio":1e39}`,
		"int64 overflow":    `{"Total":9223372036854775808}`,
		"fraction into int": `{"Count":1.5}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, err := binding.Bind[limits](newJSONRequest(body), nil, binding.Options{})
			require.ErrorIs(t, err, binding.ErrMalformedBody)
			assert.Nil(t, result)
		})
	}
}

func TestBind_number_at_range_limits(t *testing.T) {
	t.Parallel()

	body := `{"Count":-128,"Port":65535,"Ratio":3.5,"Total":9223372036854775807}`

	result, err := binding.Bind[limits](newJSONRequest(body), nil, binding.Options{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, limits{Count: -128, Port: 65535, Ratio: 3.5, Total: 9223372036854775807}, result.Value())
}

type team struct {
	Lead    *string
	Members []member `json:"members"`
}

type member struct {
	FirstName string
}

func TestBind_keys_matching_the_same_field(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body string
		opts binding.Options
	}{
		"case variants": {
			body: `{"LEAD":"a","lead":null}`,
		},
		"exact and case variant": {
			body: `{"Lead":"a","lead":"b"}`,
		},
		"nested in a slice": {
			body: `{"Lead":"a","members":[{"FirstName":"x","firstname":"y"}]}`,
		},
		"naming policy and go name": {
			body: `{"Lead":"a","members":[{"first_name":"x","FirstName":"y"}]}`,
			opts: binding.Options{NamingPolicy: binding.NamingSnake},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// The outcome must not depend on map iteration order.
			for range 50 {
				result, err := binding.Bind[team](newJSONRequest(tc.body), nil, tc.opts)
				require.ErrorIs(t, err, binding.ErrMalformedBody)
				require.Nil(t, result)
			}
		})
	}
}

func TestBind_case_variants_with_case_sensitive_matching(t *testing.T) {
	t.Parallel()

	result, err := binding.Bind[team](newJSONRequest(`{"LEAD":"a","Lead":"b"}`), nil, binding.Options{CaseSensitive: true})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Value().Lead)
	assert.Equal(t, "b", *result.Value().Lead)
}

// blockingBody blocks every read until it is closed.
type blockingBody struct {
	closed chan struct{}
	once   sync.Once
}

func (b *blockingBody) Read([]byte) (int, error) {
	<-b.closed
	return 0, errors.New("read on closed body")
}

func (b *blockingBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func TestBind_cancelled_during_blocked_read(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req := newJSONRequest("").WithContext(ctx)
	req.Body = &blockingBody{closed: make(chan struct{})}
	req.ContentLength = -1

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := binding.Bind(req, testRules, binding.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}
