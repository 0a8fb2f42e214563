// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clientmanager

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tombee/authpool/internal/log"
	"github.com/tombee/authpool/internal/metrics"
	authpoolerrors "github.com/tombee/authpool/pkg/errors"
	"github.com/tombee/authpool/pkg/httpclient"
)

// ErrAlreadyInitialized is returned by Configure once the shared client
// exists.
var ErrAlreadyInitialized = errors.New("clientmanager: shared client already initialized")

// Builder constructs the shared client. httpclient.New is the default.
type Builder func(cfg httpclient.Config, opts ...httpclient.Option) (*httpclient.Client, error)

// Manager holds the shared client. A Manager is published only after its
// client is stored, so readers never see a half-built one.
type Manager struct {
	client atomic.Pointer[httpclient.Client]
}

// GetHTTPClient returns the shared client. It fails with a ClientAccess
// error if the manager holds none, which happens after Shutdown.
func (m *Manager) GetHTTPClient() (*httpclient.Client, error) {
	c := m.client.Load()
	if c == nil {
		return nil, authpoolerrors.NewClientError(MsgGettingHTTPClient, nil)
	}
	return c, nil
}

// Provider lazily builds and holds one Manager.
type Provider struct {
	// mu serializes construction, Configure and Shutdown. The fast path in
	// GetInstance never takes it.
	mu       sync.Mutex
	instance atomic.Pointer[Manager]

	cfg        httpclient.Config
	clientOpts []httpclient.Option
	build      Builder
	logger     *slog.Logger
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithConfig sets the client configuration. Default: httpclient.DefaultConfig().
func WithConfig(cfg httpclient.Config) ProviderOption {
	return func(p *Provider) {
		p.cfg = cfg
	}
}

// WithClientOptions passes options through to the builder.
func WithClientOptions(opts ...httpclient.Option) ProviderOption {
	return func(p *Provider) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// WithBuilder replaces the client constructor.
func WithBuilder(build Builder) ProviderOption {
	return func(p *Provider) {
		p.build = build
	}
}

// WithLogger sets the lifecycle logger. Default: slog.Default() at the time
// of each log call.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a Provider. Nothing is built until GetInstance.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		cfg:   httpclient.DefaultConfig(),
		build: httpclient.New,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetInstance returns the Manager, building it on the first call. Concurrent
// first callers share one construction. On failure it returns a
// ClientInitialization error and leaves the provider empty so a later call
// can try again.
func (p *Provider) GetInstance() (*Manager, error) {
	if m := p.instance.Load(); m != nil {
		return m, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if m := p.instance.Load(); m != nil {
		return m, nil
	}

	logger := log.WithComponent(p.log(), "clientmanager")

	client, err := p.build(p.cfg, p.clientOpts...)
	if err != nil {
		metrics.RecordConstruction(metrics.ResultFailure)
		logger.Error("failed to create shared HTTP client", log.Error(err))
		return nil, authpoolerrors.NewClientError(MsgCreatingHTTPClient, err, err.Error())
	}

	m := &Manager{}
	m.client.Store(client)
	p.instance.Store(m)

	metrics.RecordConstruction(metrics.ResultSuccess)
	policy := client.Policy()
	logger.Info("shared HTTP client created",
		slog.Int("max_total", client.Pool().MaxTotal()),
		slog.Int("max_per_route", client.Pool().MaxPerRoute()),
		slog.Int64("connect_timeout_ms", policy.ConnectTimeout.Milliseconds()),
		slog.Int64("read_timeout_ms", policy.ReadTimeout.Milliseconds()),
		slog.Int64("pool_acquire_timeout_ms", policy.PoolAcquireTimeout.Milliseconds()),
		slog.Bool("redirects_enabled", policy.RedirectsEnabled),
	)
	return m, nil
}

// GetHTTPClient is GetInstance followed by Manager.GetHTTPClient.
func (p *Provider) GetHTTPClient() (*httpclient.Client, error) {
	m, err := p.GetInstance()
	if err != nil {
		return nil, err
	}
	return m.GetHTTPClient()
}

// Configure replaces the configuration used for construction. It fails with
// ErrAlreadyInitialized once a Manager exists.
func (p *Provider) Configure(cfg httpclient.Config, opts ...httpclient.Option) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance.Load() != nil {
		return ErrAlreadyInitialized
	}
	p.cfg = cfg
	p.clientOpts = opts
	return nil
}

// Shutdown unpublishes the Manager, clears its client and drains the pool.
// Managers already handed out report a ClientAccess error afterwards. The
// next GetInstance builds a fresh client.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	m := p.instance.Swap(nil)
	p.mu.Unlock()

	if m == nil {
		return nil
	}
	client := m.client.Swap(nil)
	if client == nil {
		return nil
	}

	log.WithComponent(p.log(), "clientmanager").Info("shutting down shared HTTP client",
		slog.Int("leased", client.Pool().Stats().Leased))
	return client.Shutdown(ctx)
}

func (p *Provider) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
