package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/payments-go/schema"
)

// Option adjusts a single call. Options take precedence over the Factory's
// defaults.
type Option func(*callOptions)

type callOptions struct {
	timeout time.Duration
	header  http.Header
}

// WithTimeout overrides the default timeout for this call.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// WithHeader sets a header for this call, replacing any default of the same
// name. Other default headers are kept.
func WithHeader(key, value string) Option {
	return func(o *callOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Set(key, value)
	}
}

// WithHeaders merges h over the default headers for this call.
func WithHeaders(h http.Header) Option {
	return func(o *callOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		for k, vs := range h {
			o.header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
}

// CallAsJSON sends the request built by b, decodes the JSON response with
// responseSchema and binds the result to T. A Builder can be sent once.
//
// Transport failures are returned unchanged. A response that arrives but does
// not satisfy responseSchema yields a *ResponseDecodeError.
func CallAsJSON[T any](ctx context.Context, b *Builder, responseSchema schema.Validator, opts ...Option) (*Response[T], error) {
	if b.sent {
		return nil, ErrRequestConsumed
	}
	b.sent = true

	co := &callOptions{}
	for _, o := range opts {
		if o != nil {
			o(co)
		}
	}

	req, err := b.build(co)
	if err != nil {
		return nil, err
	}

	raw, err := b.f.tr.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if ct := raw.Header.Get("Content-Type"); ct != "" && !isJSONMediaType(ct) {
		return nil, &ResponseDecodeError{
			Err: &schema.ValidationError{
				Code:     schema.InvalidJSON,
				Message:  fmt.Sprintf("unexpected content type %q", ct),
				Expected: responseSchema.Kind(),
			},
			Response: raw,
		}
	}

	decoded, err := schema.DecodeJSON(responseSchema, raw.Body)
	if err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("request: decode response: %w", err)
		}
		b.f.log.DebugContext(ctx, "response violates schema",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
			slog.String("path", verr.Path.String()),
			slog.String("err", verr.Message),
		)
		return nil, &ResponseDecodeError{Err: verr, Response: raw}
	}

	result, err := schema.Bind[T](decoded)
	if err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			verr = &schema.ValidationError{
				Code:     schema.TypeMismatch,
				Message:  err.Error(),
				Expected: responseSchema.Kind(),
			}
		}
		b.f.log.DebugContext(ctx, "response does not bind to result type",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
			slog.String("path", verr.Path.String()),
			slog.String("err", verr.Message),
		)
		return nil, &ResponseDecodeError{Err: verr, Response: raw}
	}

	return &Response[T]{
		Result:     result,
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		Body:       raw.Body,
	}, nil
}

func isJSONMediaType(ct string) bool {
	mt, err := contenttype.ParseMediaType(ct)
	if err != nil {
		return false
	}
	if mt.Type != "application" {
		return false
	}
	return mt.Subtype == "json" || strings.HasSuffix(mt.Subtype, "+json")
}
