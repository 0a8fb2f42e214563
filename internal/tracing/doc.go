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

/*
Package tracing wires OpenTelemetry for authpool and carries correlation IDs
through request contexts.

# Correlation IDs

A correlation ID ties together the outbound calls made for one
authentication flow. The shared client sends it as X-Correlation-ID:

	ctx = tracing.ToContext(ctx, tracing.NewCorrelationID())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

# Trace Export

Setup installs a global tracer provider and the W3C propagator. With no
exporter configured only propagation is active:

	provider, err := tracing.Setup(ctx, cfg.Tracing, version, os.Stderr)
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	client, err := httpclient.New(httpCfg,
	    httpclient.WithTracerProvider(provider.TracerProvider()))

Exporters are "console" (JSON spans to the given writer), "otlp-http" and
"otlp-grpc"; see package export.
*/
package tracing
