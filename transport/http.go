package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ggoodman/payments-go/internal/logctx"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id. The HTTP transport
// generates one when the caller did not.
const RequestIDHeader = "X-Request-Id"

// DefaultMaxBodyBytes bounds how much of a response body is read.
const DefaultMaxBodyBytes = 16 << 20

// ErrResponseTooLarge is returned when a response body exceeds the configured
// limit.
var ErrResponseTooLarge = errors.New("transport: response body too large")

var _ Transport = (*HTTP)(nil)

// HTTP is a Transport backed by net/http.
type HTTP struct {
	client       *http.Client
	log          *slog.Logger
	metrics      *Metrics
	maxBodyBytes int64
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the underlying client. Credential attachment is
// normally installed as the client's RoundTripper (see auth.NewRoundTripper).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithLogHandler sets the slog handler used for request logging. Records are
// enriched with the request id, method and path.
func WithLogHandler(handler slog.Handler) HTTPOption {
	return func(h *HTTP) { h.log = logctx.New(handler) }
}

// WithMetrics records every exchange in m.
func WithMetrics(m *Metrics) HTTPOption {
	return func(h *HTTP) { h.metrics = m }
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTP) { h.maxBodyBytes = n }
}

// NewHTTP returns an HTTP transport. Without WithHTTPClient it uses a
// client with no overall timeout; per-request timeouts come from
// Request.Timeout.
func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:       &http.Client{},
		log:          logctx.New(nil),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	return h
}

// Send performs the exchange. Network failures and context errors are
// returned as-is; responses outside 2xx are returned as *StatusError.
func (h *HTTP) Send(ctx context.Context, req *Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	reqID := header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
		header.Set(RequestIDHeader, reqID)
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid url: %w", err)
	}
	ctx = logctx.WithRequestData(ctx, &logctx.RequestData{
		RequestID: reqID,
		Method:    req.Method,
		Host:      u.Host,
		Path:      u.EscapedPath(),
	})

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	hreq.Header = header

	start := time.Now()
	hresp, err := h.client.Do(hreq)
	if err != nil {
		h.metrics.observe(ctx, 0, time.Since(start))
		h.log.DebugContext(ctx, "request failed", slog.String("err", err.Error()))
		return nil, err
	}
	defer func() {
		// Body already consumed; close error has no caller to report to.
		_ = hresp.Body.Close()
	}()
	h.metrics.observe(ctx, hresp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(hresp.Body, h.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	if int64(len(data)) > h.maxBodyBytes {
		return nil, ErrResponseTooLarge
	}

	resp := &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       data,
	}
	h.log.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", len(data)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Response: resp}
	}
	return resp, nil
}
