package httpclient

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Client is the shared transport: a bounded Pool, a fixed RequestPolicy and
// the http.Client that applies both. It is safe for concurrent use and is
// never reconfigured after construction.
type Client struct {
	httpClient *http.Client
	pool       *Pool
	policy     RequestPolicy
}

// Option customizes a Client during assembly.
type Option func(*options)

type options struct {
	userAgent      string
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
}

// WithUserAgent sets the User-Agent applied to requests that lack one.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithLogger sets the logger for request logs. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracerProvider sets the tracer provider for client spans.
// Default: the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// New validates cfg, builds the pool and the request policy, and assembles
// the client.
//
// Returns an error if the configuration is invalid or the pool cannot be
// built.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := NewPool(cfg.Pool())
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithUserAgent(cfg.UserAgent)}, opts...)
	return NewClient(pool, cfg.Policy(), opts...), nil
}

// NewClient assembles a client from a pool and a policy. The request
// pipeline, outermost first, is tracing, logging, then the pool lease layer
// over the pooled transport.
func NewClient(pool *Pool, policy RequestPolicy, opts ...Option) *Client {
	o := options{
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	pool.bind(policy)

	var rt http.RoundTripper = pool
	rt = newLoggingTransport(rt, o.userAgent, o.logger)
	rt = newTracingTransport(rt, o.tracerProvider)

	return &Client{
		httpClient: &http.Client{
			Transport:     rt,
			CheckRedirect: policy.checkRedirect,
		},
		pool:   pool,
		policy: policy,
	}
}

// Do sends an HTTP request through the shared pool. The caller must close
// the response body to return the lease.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// HTTPClient returns the underlying *http.Client for libraries that need
// one. It shares the pool and policy.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Policy returns the request policy fixed at construction.
func (c *Client) Policy() RequestPolicy {
	return c.policy
}

// Pool returns the client's connection pool.
func (c *Client) Pool() *Pool {
	return c.pool
}

// Close closes the pool. Later requests fail with ErrPoolClosed.
func (c *Client) Close() {
	c.pool.Close()
}

// Shutdown closes the pool and waits for in-flight responses to be closed.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.pool.Shutdown(ctx)
}
