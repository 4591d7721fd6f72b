// Package transport defines the boundary between the request builder and the
// network. A Transport sends one fully built request and returns the raw
// response; it owns connection handling, TLS and the non-2xx policy.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Transport sends a single request. Implementations must be safe for
// concurrent use.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Request is a transport-ready request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte // nil when the request has no body

	// Timeout bounds the whole exchange, body read included. Zero means no
	// timeout beyond the context's own deadline.
	Timeout time.Duration
}

// Response is the raw result of a round trip.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for responses outside the 2xx range. The full
// response is retained for callers that want to inspect the error payload.
type StatusError struct {
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Response.StatusCode, http.StatusText(e.Response.StatusCode))
}

// StatusCode is a convenience accessor for e.Response.StatusCode.
func (e *StatusError) StatusCode() int { return e.Response.StatusCode }

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

func (f Func) Send(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }
