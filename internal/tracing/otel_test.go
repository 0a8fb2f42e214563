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

package tracing

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	tp := otel.GetTracerProvider()
	prop := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"console", func(c *Config) { c.Exporter = "console" }, ""},
		{"otlp without endpoint", func(c *Config) { c.Exporter = "otlp-grpc" }, "tracing.endpoint"},
		{"otlp with endpoint", func(c *Config) { c.Exporter = "otlp-http"; c.Endpoint = "collector:4318" }, ""},
		{"unknown exporter", func(c *Config) { c.Exporter = "jaeger" }, "tracing.exporter"},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, "tracing.service_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetup_Disabled(t *testing.T) {
	restoreGlobals(t)

	p, err := Setup(context.Background(), DefaultConfig(), "test", nil)
	require.NoError(t, err)

	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
}

func TestSetup_Console(t *testing.T) {
	restoreGlobals(t)

	cfg := DefaultConfig()
	cfg.Exporter = "console"

	var buf bytes.Buffer
	p, err := Setup(context.Background(), cfg, "1.2.3", &buf)
	require.NoError(t, err)

	ctx, span := p.TracerProvider().Tracer("test").Start(context.Background(), "HTTP GET",
		trace.WithSpanKind(trace.SpanKindClient))
	require.True(t, span.SpanContext().IsValid())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://verify.example.com", nil)
	require.NoError(t, err)
	InjectHTTPHeaders(ctx, req)
	assert.NotEmpty(t, req.Header.Get("traceparent"))

	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "HTTP GET")
	assert.Contains(t, out, "1.2.3")
}

func TestSetup_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exporter = "otlp-http"

	_, err := Setup(context.Background(), cfg, "test", nil)
	require.Error(t, err)
}

func TestW3CPropagator(t *testing.T) {
	var _ propagation.TextMapPropagator = W3CPropagator()
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, W3CPropagator().Fields())
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	assert.NotNil(t, p.TracerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}
