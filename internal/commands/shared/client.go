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

package shared

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tombee/authpool/internal/config"
	"github.com/tombee/authpool/internal/log"
	"github.com/tombee/authpool/internal/tracing"
	"github.com/tombee/authpool/pkg/clientmanager"
	"github.com/tombee/authpool/pkg/httpclient"
)

var (
	provider = clientmanager.Default()

	// traces is the tracer provider installed by SharedClient, flushed by
	// ShutdownClient.
	traces *tracing.Provider
)

// SetProviderForTest swaps the provider commands use and returns a function
// that restores the previous one.
func SetProviderForTest(p *clientmanager.Provider) func() {
	prev := provider
	provider = p
	return func() {
		provider = prev
	}
}

// LoadConfig loads configuration from --config or the default location.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger from cfg. --verbose forces debug.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logCfg := cfg.Log.LoggerConfig()
	logCfg.Output = w
	if GetVerbose() {
		logCfg.Level = "debug"
	}
	return log.New(logCfg)
}

// SharedClient loads configuration, sets up trace export, hands both to the
// client manager and returns the shared client. Logs and console spans go to
// logOut.
func SharedClient(ctx context.Context, logOut io.Writer) (*httpclient.Client, *config.Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg, logOut)
	slog.SetDefault(logger)

	version, _, _ := GetVersion()
	tp, err := tracing.Setup(ctx, cfg.Tracing, version, logOut)
	if err != nil {
		return nil, nil, NewConfigError("failed to set up tracing", err)
	}

	opts := []httpclient.Option{
		httpclient.WithLogger(logger),
		httpclient.WithTracerProvider(tp.TracerProvider()),
	}
	if err := provider.Configure(cfg.HTTP, opts...); err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, NewConfigError("failed to apply configuration", err)
	}

	client, err := provider.GetHTTPClient()
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, NewClientInitError("failed to initialize HTTP client", err)
	}
	traces = tp
	return client, cfg, nil
}

// ShutdownClient drains the shared client and flushes pending spans.
func ShutdownClient(ctx context.Context) error {
	err := provider.Shutdown(ctx)
	if traces != nil {
		err = errors.Join(err, traces.Shutdown(ctx))
		traces = nil
	}
	return err
}
