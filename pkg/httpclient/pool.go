package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tombee/authpool/internal/metrics"
	authpoolerrors "github.com/tombee/authpool/pkg/errors"
)

var (
	// ErrPoolTimeout is returned when no lease became free within the
	// pool acquisition timeout.
	ErrPoolTimeout = errors.New("httpclient: timed out waiting for a pooled connection")

	// ErrPoolClosed is returned for requests issued after Close.
	ErrPoolClosed = errors.New("httpclient: connection pool is closed")

	// ErrReadTimeout is returned from a response body read that saw no
	// data within the read timeout.
	ErrReadTimeout = errors.New("httpclient: response read timed out")
)

// PoolConfig holds the pool capacity limits.
type PoolConfig struct {
	// MaxTotal caps leases across all routes.
	MaxTotal int

	// MaxPerRoute caps leases to a single route, applied to every route.
	MaxPerRoute int
}

// Validate checks if the limits are usable.
func (c PoolConfig) Validate() error {
	if c.MaxTotal <= 0 {
		return &authpoolerrors.ValidationError{
			Field:   "max_total_connections",
			Message: fmt.Sprintf("must be > 0, got %d", c.MaxTotal),
		}
	}
	if c.MaxPerRoute <= 0 {
		return &authpoolerrors.ValidationError{
			Field:   "max_per_route_connections",
			Message: fmt.Sprintf("must be > 0, got %d", c.MaxPerRoute),
		}
	}
	if c.MaxPerRoute > c.MaxTotal {
		return &authpoolerrors.ValidationError{
			Field:      "max_per_route_connections",
			Message:    fmt.Sprintf("(%d) must be <= max_total_connections (%d)", c.MaxPerRoute, c.MaxTotal),
			Suggestion: "Lower max_per_route_connections or raise max_total_connections",
		}
	}
	return nil
}

// PoolStats is a point-in-time view of pool usage. Routes counts routes with
// a lease held or awaited.
type PoolStats struct {
	MaxTotal    int `json:"max_total"`
	MaxPerRoute int `json:"max_per_route"`
	Leased      int `json:"leased"`
	Routes      int `json:"routes"`
}

// Pool is a bounded connection pool. Every request holds an exclusive lease
// from the moment it is sent until its response body is closed or fully
// read. Leases are limited per route and in total; the underlying
// http.Transport keeps the idle connections for reuse.
//
// A Pool backs exactly one Client, which applies its RequestPolicy when the
// two are assembled.
type Pool struct {
	maxTotal    int
	maxPerRoute int

	acquireTimeout time.Duration
	readTimeout    time.Duration

	total *semaphore.Weighted

	// routes only holds routes in use; an entry is dropped when its last
	// holder or waiter leaves.
	mu     sync.Mutex
	routes map[string]*route

	transport *http.Transport
	leased    atomic.Int64
	closed    atomic.Bool
}

// NewPool creates a pool with the given limits.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          cfg.MaxTotal,
		MaxIdleConnsPerHost:   cfg.MaxPerRoute,
		MaxConnsPerHost:       cfg.MaxPerRoute,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Pool{
		maxTotal:    cfg.MaxTotal,
		maxPerRoute: cfg.MaxPerRoute,
		total:       semaphore.NewWeighted(int64(cfg.MaxTotal)),
		routes:      make(map[string]*route),
		transport:   transport,
	}, nil
}

// bind applies the request policy's timeouts to the pool's transport. It is
// called once while assembling a Client, before the pool serves requests.
func (p *Pool) bind(policy RequestPolicy) {
	p.transport.DialContext = (&net.Dialer{
		Timeout:   policy.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	p.transport.TLSHandshakeTimeout = policy.ConnectTimeout
	p.transport.ResponseHeaderTimeout = policy.ReadTimeout
	p.acquireTimeout = policy.PoolAcquireTimeout
	p.readTimeout = policy.ReadTimeout
}

// MaxTotal returns the total lease limit.
func (p *Pool) MaxTotal() int {
	return p.maxTotal
}

// MaxPerRoute returns the per-route lease limit.
func (p *Pool) MaxPerRoute() int {
	return p.maxPerRoute
}

// Stats returns current pool usage.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	routes := len(p.routes)
	p.mu.Unlock()

	return PoolStats{
		MaxTotal:    p.maxTotal,
		MaxPerRoute: p.maxPerRoute,
		Leased:      int(p.leased.Load()),
		Routes:      routes,
	}
}

// Close stops handing out leases and closes idle connections. Requests
// already in flight finish normally.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.transport.CloseIdleConnections()
}

// Shutdown closes the pool and waits until every outstanding lease has been
// returned or ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.Close()

	if err := p.total.Acquire(ctx, int64(p.maxTotal)); err != nil {
		return fmt.Errorf("httpclient: %d leases still held: %w", p.leased.Load(), err)
	}
	p.total.Release(int64(p.maxTotal))
	p.transport.CloseIdleConnections()
	return nil
}

// RoundTrip implements http.RoundTripper. It takes a lease for the request's
// route, sends the request on the pooled transport and ties the lease to
// the response body.
func (p *Pool) RoundTrip(req *http.Request) (*http.Response, error) {
	l, err := p.acquire(req.Context(), routeKey(req.URL))
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	ctx, cancel := context.WithCancel(req.Context())
	resp, err := p.transport.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		l.release()
		return nil, err
	}

	body := &leasedBody{
		rc:          resp.Body,
		lease:       l,
		cancel:      cancel,
		readTimeout: p.readTimeout,
	}
	if p.readTimeout > 0 {
		// Created stopped; Read only resets and stops it, so Close may run
		// on another goroutine.
		body.timer = time.AfterFunc(p.readTimeout, body.expire)
		body.timer.Stop()
	}
	resp.Body = body
	return resp, nil
}

func (p *Pool) acquire(ctx context.Context, key string) (*lease, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	parent := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	r := p.checkoutRoute(key)
	if err := r.sem.Acquire(ctx, 1); err != nil {
		p.returnRoute(key, r)
		return nil, p.acquireError(parent, key, err)
	}
	if err := p.total.Acquire(ctx, 1); err != nil {
		r.sem.Release(1)
		p.returnRoute(key, r)
		return nil, p.acquireError(parent, key, err)
	}

	p.leased.Add(1)
	metrics.LeaseAcquired()
	return &lease{pool: p, key: key, route: r}, nil
}

// acquireError reports a caller cancellation as-is and anything else as a
// pool timeout.
func (p *Pool) acquireError(parent context.Context, key string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	metrics.RecordAcquireTimeout()
	return fmt.Errorf("%w: route %s after %v: %v", ErrPoolTimeout, key, p.acquireTimeout, err)
}

// route is the per-route lease semaphore. users counts the leases held and
// awaited on it and is guarded by Pool.mu.
type route struct {
	sem   *semaphore.Weighted
	users int
}

func (p *Pool) checkoutRoute(key string) *route {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.routes[key]
	if !ok {
		r = &route{sem: semaphore.NewWeighted(int64(p.maxPerRoute))}
		p.routes[key] = r
	}
	r.users++
	return r
}

func (p *Pool) returnRoute(key string, r *route) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r.users--
	if r.users == 0 && p.routes[key] == r {
		delete(p.routes, key)
	}
}

// routeKey identifies a route as scheme://host:port with the default port
// filled in.
func routeKey(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return scheme + "://" + net.JoinHostPort(host, port)
}

type lease struct {
	pool  *Pool
	key   string
	route *route
	once  sync.Once
}

func (l *lease) release() {
	l.once.Do(func() {
		l.route.sem.Release(1)
		l.pool.total.Release(1)
		l.pool.returnRoute(l.key, l.route)
		l.pool.leased.Add(-1)
		metrics.LeaseReleased()
	})
}

// leasedBody returns its lease on Close or when a read ends the body. Each
// Read must produce data within readTimeout or the request is cancelled and
// the read fails with ErrReadTimeout.
type leasedBody struct {
	rc          io.ReadCloser
	lease       *lease
	cancel      context.CancelFunc
	readTimeout time.Duration

	// timer is set before the body is handed out and never reassigned.
	timer    *time.Timer
	timedOut atomic.Bool
}

func (b *leasedBody) Read(p []byte) (int, error) {
	if b.timer != nil {
		b.timer.Reset(b.readTimeout)
	}

	n, err := b.rc.Read(p)

	if b.timer != nil {
		b.timer.Stop()
	}
	if err != nil {
		if b.timedOut.Load() {
			err = fmt.Errorf("%w after %v", ErrReadTimeout, b.readTimeout)
		}
		b.lease.release()
	}
	return n, err
}

func (b *leasedBody) expire() {
	b.timedOut.Store(true)
	b.cancel()
}

func (b *leasedBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	err := b.rc.Close()
	b.cancel()
	b.lease.release()
	return err
}
