package httpclient

import (
	"errors"
	"strings"
	"testing"
	"time"

	authpoolerrors "github.com/tombee/authpool/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ConnectTimeoutMs != 3000 {
		t.Errorf("expected connect timeout 3000ms, got %d", cfg.ConnectTimeoutMs)
	}
	if cfg.ReadTimeoutMs != 3000 {
		t.Errorf("expected read timeout 3000ms, got %d", cfg.ReadTimeoutMs)
	}
	if cfg.PoolAcquireTimeoutMs != 3000 {
		t.Errorf("expected pool acquire timeout 3000ms, got %d", cfg.PoolAcquireTimeoutMs)
	}
	if cfg.MaxTotalConnections != 20 {
		t.Errorf("expected max total connections 20, got %d", cfg.MaxTotalConnections)
	}
	if cfg.MaxPerRouteConnections != 20 {
		t.Errorf("expected max per route connections 20, got %d", cfg.MaxPerRouteConnections)
	}
	if cfg.FollowRedirects {
		t.Error("expected FollowRedirects to be false by default")
	}
	if cfg.AllowRelativeRedirects {
		t.Error("expected AllowRelativeRedirects to be false by default")
	}
	if cfg.UserAgent == "" {
		t.Error("expected non-empty user agent")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigPolicy(t *testing.T) {
	policy := DefaultConfig().Policy()

	want := RequestPolicy{
		ConnectTimeout:           3000 * time.Millisecond,
		ReadTimeout:              3000 * time.Millisecond,
		PoolAcquireTimeout:       3000 * time.Millisecond,
		RedirectsEnabled:         false,
		RelativeRedirectsAllowed: false,
	}
	if policy != want {
		t.Errorf("Policy() = %+v, want %+v", policy, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		field     string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:      "zero connect timeout",
			mutate:    func(c *Config) { c.ConnectTimeoutMs = 0 },
			expectErr: true,
			field:     "connect_timeout_ms",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.ReadTimeoutMs = -1 },
			expectErr: true,
			field:     "read_timeout_ms",
		},
		{
			name:      "zero pool acquire timeout",
			mutate:    func(c *Config) { c.PoolAcquireTimeoutMs = 0 },
			expectErr: true,
			field:     "pool_acquire_timeout_ms",
		},
		{
			name:      "zero max total",
			mutate:    func(c *Config) { c.MaxTotalConnections = 0 },
			expectErr: true,
			field:     "max_total_connections",
		},
		{
			name:      "zero max per route",
			mutate:    func(c *Config) { c.MaxPerRouteConnections = 0 },
			expectErr: true,
			field:     "max_per_route_connections",
		},
		{
			name: "per route above total",
			mutate: func(c *Config) {
				c.MaxTotalConnections = 10
				c.MaxPerRouteConnections = 11
			},
			expectErr: true,
			field:     "max_per_route_connections",
		},
		{
			name: "per route equal to total",
			mutate: func(c *Config) {
				c.MaxTotalConnections = 5
				c.MaxPerRouteConnections = 5
			},
		},
		{
			name:      "empty user agent",
			mutate:    func(c *Config) { c.UserAgent = "" },
			expectErr: true,
			field:     "user_agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if !tt.expectErr {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			var verr *authpoolerrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %q, got %q", tt.field, err.Error())
			}
		})
	}
}
