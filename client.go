package payments

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ggoodman/payments-go/auth"
	"github.com/ggoodman/payments-go/request"
	"github.com/ggoodman/payments-go/transport"
	"github.com/joeshaw/envdecode"
)

// Version is reported in the default User-Agent.
const Version = "0.1.0"

// DefaultBaseURL is the sandbox environment.
const DefaultBaseURL = "https://connect.squareupsandbox.com"

// DefaultTimeout bounds each request unless overridden.
const DefaultTimeout = 60 * time.Second

// Config is the environment-driven client configuration.
type Config struct {
	// BaseURL of the API. ENV: PAYMENTS_BASE_URL
	BaseURL string `env:"PAYMENTS_BASE_URL,default=https://connect.squareupsandbox.com"`
	// AccessToken sent as a bearer token. ENV: PAYMENTS_ACCESS_TOKEN
	AccessToken string `env:"PAYMENTS_ACCESS_TOKEN"`
	// Timeout per request. ENV: PAYMENTS_TIMEOUT
	Timeout time.Duration `env:"PAYMENTS_TIMEOUT,default=60s"`
	// UserAgent overrides the default User-Agent. ENV: PAYMENTS_USER_AGENT
	UserAgent string `env:"PAYMENTS_USER_AGENT"`
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	timeout    time.Duration
	logHandler slog.Handler
	creds      auth.Credentials
	httpClient *http.Client
	tr         transport.Transport
	metrics    *transport.Metrics
	header     http.Header
}

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger routes client logs to logger. Records are enriched with the
// request id and the API operation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logHandler = logger.Handler()
		}
	}
}

// WithCredentials sets the bearer token source.
func WithCredentials(c auth.Credentials) Option {
	return func(o *options) { o.creds = c }
}

// WithHTTPClient sets the underlying HTTP client. When credentials are
// configured the client's transport is wrapped, not replaced.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTransport replaces the HTTP transport entirely. Credentials are not
// applied to a custom transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) { o.tr = t }
}

// WithMetrics records request counts and latency per operation.
func WithMetrics(m *transport.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) { o.header.Set(key, value) }
}

// Client is the entry point to the API.
type Client struct {
	Payments *PaymentsAPI

	factory *request.Factory
}

// NewClient builds a Client. Without options it targets the sandbox with no
// credentials.
func NewClient(opts ...Option) (*Client, error) {
	o := &options{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		header:  http.Header{"User-Agent": []string{"payments-go/" + Version}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	tr := o.tr
	if tr == nil {
		hc := &http.Client{}
		if o.httpClient != nil {
			cp := *o.httpClient
			hc = &cp
		}
		if o.creds != nil {
			hc.Transport = auth.NewRoundTripper(hc.Transport, o.creds)
		}
		tr = transport.NewHTTP(
			transport.WithHTTPClient(hc),
			transport.WithLogHandler(o.logHandler),
			transport.WithMetrics(o.metrics),
		)
	}

	f, err := request.NewFactory(request.Config{
		BaseURL:    o.baseURL,
		Header:     o.header,
		Timeout:    o.timeout,
		Transport:  tr,
		LogHandler: o.logHandler,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	return &Client{
		Payments: &PaymentsAPI{f: f},
		factory:  f,
	}, nil
}

// NewClientFromEnv reads Config from the environment and builds a Client.
// Explicit options are applied after the environment and win over it.
func NewClientFromEnv(opts ...Option) (*Client, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("payments: decode env config: %w", err)
	}
	return NewClient(append(cfg.options(), opts...)...)
}

func (cfg Config) options() []Option {
	var opts []Option
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	if cfg.AccessToken != "" {
		opts = append(opts, WithCredentials(auth.Static(cfg.AccessToken)))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithHeader("User-Agent", cfg.UserAgent))
	}
	return opts
}
