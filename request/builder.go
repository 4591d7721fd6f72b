package request

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ggoodman/payments-go/internal/logctx"
	"github.com/ggoodman/payments-go/schema"
	"github.com/ggoodman/payments-go/transport"
	"github.com/gowebpki/jcs"
)

const jsonContentType = "application/json"

// Config is the immutable configuration shared by every request a Factory
// creates.
type Config struct {
	// BaseURL is prefixed to every request path, e.g.
	// "https://connect.squareupsandbox.com".
	BaseURL string

	// Header holds default headers sent with every request. Per-call options
	// take precedence.
	Header http.Header

	// Timeout is the default per-request timeout. Zero means none.
	Timeout time.Duration

	// Transport sends the finished requests. Required.
	Transport transport.Transport

	// LogHandler is an optional slog.Handler. If nil, logging is discarded.
	LogHandler slog.Handler
}

// Factory creates Builders from a fixed Config.
type Factory struct {
	baseURL string
	header  http.Header
	timeout time.Duration
	tr      transport.Transport
	log     *slog.Logger
}

// NewFactory validates cfg and returns a Factory. The Config's header map is
// copied; later changes to it have no effect.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.Transport == nil {
		return nil, errors.New("request: transport is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("request: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("request: base url must be absolute: %q", cfg.BaseURL)
	}
	header := cfg.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &Factory{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		header:  header,
		timeout: cfg.Timeout,
		tr:      cfg.Transport,
		log:     logctx.New(cfg.LogHandler),
	}, nil
}

// CreateRequest starts a new request. An empty basePath means the path is
// built entirely with AppendTemplatePath.
func (f *Factory) CreateRequest(method, basePath string) *Builder {
	b := &Builder{
		f:      f,
		method: method,
		query:  make(map[string][]string),
	}
	b.path.WriteString(basePath)
	return b
}

// Builder accumulates one request. See the package documentation for the
// expected call order.
type Builder struct {
	f      *Factory
	method string
	path   strings.Builder

	queryNames []string // first-registration order
	query      map[string][]string

	body    any
	hasBody bool

	sent bool
}

// Arg declares one argument for PrepareArgs.
type Arg struct {
	Name   string
	Value  any
	Schema schema.Validator
}

// NewArg is shorthand for an Arg literal.
func NewArg(name string, value any, s schema.Validator) Arg {
	return Arg{Name: name, Value: value, Schema: s}
}

// MappedArgs holds validated arguments by name. Every declared name is
// present; absent optionals map to nil.
type MappedArgs map[string]any

// PrepareArgs validates args in order and returns the validated values. The
// first failure aborts with an *ArgumentError. PrepareArgs does not modify
// the Builder.
func (b *Builder) PrepareArgs(args ...Arg) (MappedArgs, error) {
	out := make(MappedArgs, len(args))
	for _, a := range args {
		v, err := a.Schema.Validate(a.Value, nil)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				return nil, &ArgumentError{Name: a.Name, Err: verr}
			}
			return nil, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		out[a.Name] = v
	}
	return out, nil
}

// Query sets a query parameter. Nil values (including nil pointers) are
// ignored and never emitted. Setting a name again replaces its value.
// Slice values emit the name once per element.
func (b *Builder) Query(name string, value any) *Builder {
	if schema.KindOf(value) == schema.KindNull {
		return b
	}
	if _, seen := b.query[name]; !seen {
		b.queryNames = append(b.queryNames, name)
	}
	b.query[name] = renderQueryValues(value)
	return b
}

// AppendTemplatePath appends literals interleaved with values, in the manner
// of a template string: literals[0], values[0], literals[1], ... Each value
// is path-escaped on its own so it always stays within one segment.
// len(literals) must be len(values)+1.
func (b *Builder) AppendTemplatePath(literals []string, values ...any) *Builder {
	if len(literals) != len(values)+1 {
		panic(fmt.Sprintf("request: template path needs %d literals for %d values, got %d", len(values)+1, len(values), len(literals)))
	}
	for i, lit := range literals {
		b.path.WriteString(lit)
		if i < len(values) {
			b.path.WriteString(url.PathEscape(renderScalar(values[i])))
		}
	}
	return b
}

// JSON sets the request body. Setting it again replaces the previous body.
func (b *Builder) JSON(body any) *Builder {
	b.body = body
	b.hasBody = true
	return b
}

// URL returns the absolute URL the request will be sent to.
func (b *Builder) URL() string {
	var sb strings.Builder
	sb.WriteString(b.f.baseURL)
	sb.WriteString(b.path.String())
	first := true
	for _, name := range b.queryNames {
		for _, v := range b.query[name] {
			if first {
				sb.WriteByte('?')
				first = false
			} else {
				sb.WriteByte('&')
			}
			sb.WriteString(queryEscape(name))
			sb.WriteByte('=')
			sb.WriteString(queryEscape(v))
		}
	}
	return sb.String()
}

// build turns the accumulated state into a transport request, applying
// per-call options over the factory defaults.
func (b *Builder) build(co *callOptions) (*transport.Request, error) {
	header := b.f.header.Clone()
	header.Set("Accept", jsonContentType)

	var body []byte
	if b.hasBody {
		raw, err := json.Marshal(b.body)
		if err != nil {
			return nil, fmt.Errorf("request: encode body: %w", err)
		}
		body, err = jcs.Transform(raw)
		if err != nil {
			return nil, fmt.Errorf("request: canonicalize body: %w", err)
		}
		header.Set("Content-Type", jsonContentType)
	}

	for k, vs := range co.header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	timeout := b.f.timeout
	if co.timeout > 0 {
		timeout = co.timeout
	}

	return &transport.Request{
		Method:  b.method,
		URL:     b.URL(),
		Header:  header,
		Body:    body,
		Timeout: timeout,
	}, nil
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func renderQueryValues(value any) []string {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8) || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if schema.KindOf(elem) == schema.KindNull {
				continue
			}
			out = append(out, renderScalar(elem))
		}
		return out
	}
	return []string{renderScalar(rv.Interface())}
}

// renderScalar formats a single value for a URL: strings verbatim, numbers
// in their shortest decimal form, booleans as true/false. Text marshalers
// (time.Time renders as RFC 3339) take precedence over String methods.
func renderScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case encoding.TextMarshaler:
		if b, err := v.MarshalText(); err == nil {
			return string(b)
		}
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return renderScalar(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
