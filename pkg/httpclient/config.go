package httpclient

import (
	"time"

	authpoolerrors "github.com/tombee/authpool/pkg/errors"
)

// Defaults applied by DefaultConfig.
const (
	DefaultConnectTimeout     = 3000 * time.Millisecond
	DefaultReadTimeout        = 3000 * time.Millisecond
	DefaultPoolAcquireTimeout = 3000 * time.Millisecond
	DefaultMaxConnections     = 20
	DefaultUserAgent          = "authpool-http-client/1.0"
)

// Config configures the shared client's pool limits and request policy.
// Values are fixed once a Client is built from it.
type Config struct {
	// ConnectTimeoutMs bounds connection establishment (dial and TLS handshake).
	// Default: 3000. Must be > 0.
	ConnectTimeoutMs int `yaml:"connect_timeout_ms" json:"connect_timeout_ms"`

	// ReadTimeoutMs bounds waiting for response headers and each body read.
	// Default: 3000. Must be > 0.
	ReadTimeoutMs int `yaml:"read_timeout_ms" json:"read_timeout_ms"`

	// PoolAcquireTimeoutMs bounds waiting for a free pool lease.
	// Default: 3000. Must be > 0.
	PoolAcquireTimeoutMs int `yaml:"pool_acquire_timeout_ms" json:"pool_acquire_timeout_ms"`

	// MaxTotalConnections caps concurrent leases across all routes.
	// Default: 20. Must be > 0.
	MaxTotalConnections int `yaml:"max_total_connections" json:"max_total_connections"`

	// MaxPerRouteConnections caps concurrent leases to one scheme+host+port.
	// Default: 20. Must be > 0 and <= MaxTotalConnections.
	MaxPerRouteConnections int `yaml:"max_per_route_connections" json:"max_per_route_connections"`

	// FollowRedirects enables automatic redirect following.
	// Default: false.
	FollowRedirects bool `yaml:"follow_redirects" json:"follow_redirects"`

	// AllowRelativeRedirects permits following redirects whose Location is
	// relative. Only consulted when FollowRedirects is true.
	// Default: false.
	AllowRelativeRedirects bool `yaml:"allow_relative_redirects" json:"allow_relative_redirects"`

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DefaultConfig returns a Config with the conservative defaults: 3s
// timeouts, 20 connections in total and per route, no redirects.
func DefaultConfig() Config {
	return Config{
		ConnectTimeoutMs:       int(DefaultConnectTimeout / time.Millisecond),
		ReadTimeoutMs:          int(DefaultReadTimeout / time.Millisecond),
		PoolAcquireTimeoutMs:   int(DefaultPoolAcquireTimeout / time.Millisecond),
		MaxTotalConnections:    DefaultMaxConnections,
		MaxPerRouteConnections: DefaultMaxConnections,
		FollowRedirects:        false,
		AllowRelativeRedirects: false,
		UserAgent:              DefaultUserAgent,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"connect_timeout_ms", c.ConnectTimeoutMs},
		{"read_timeout_ms", c.ReadTimeoutMs},
		{"pool_acquire_timeout_ms", c.PoolAcquireTimeoutMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &authpoolerrors.ValidationError{
				Field:   p.field,
				Message: "must be > 0",
			}
		}
	}

	if err := c.Pool().Validate(); err != nil {
		return err
	}

	if c.UserAgent == "" {
		return &authpoolerrors.ValidationError{
			Field:   "user_agent",
			Message: "is required and must be non-empty",
		}
	}

	return nil
}

// Policy returns the request policy described by the configuration.
func (c Config) Policy() RequestPolicy {
	return RequestPolicy{
		ConnectTimeout:           time.Duration(c.ConnectTimeoutMs) * time.Millisecond,
		ReadTimeout:              time.Duration(c.ReadTimeoutMs) * time.Millisecond,
		PoolAcquireTimeout:       time.Duration(c.PoolAcquireTimeoutMs) * time.Millisecond,
		RedirectsEnabled:         c.FollowRedirects,
		RelativeRedirectsAllowed: c.AllowRelativeRedirects,
	}
}

// Pool returns the pool limits described by the configuration.
func (c Config) Pool() PoolConfig {
	return PoolConfig{
		MaxTotal:    c.MaxTotalConnections,
		MaxPerRoute: c.MaxPerRouteConnections,
	}
}
