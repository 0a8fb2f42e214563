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

// Package export builds OpenTelemetry span exporters.
package export

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter types.
const (
	TypeNone     = "none"
	TypeConsole  = "console"
	TypeOTLPHTTP = "otlp-http"
	TypeOTLPGRPC = "otlp-grpc"
)

// Config selects and configures one exporter.
type Config struct {
	// Type is one of the Type constants.
	Type string

	// Endpoint is the OTLP receiver address (e.g., "localhost:4318").
	Endpoint string

	// Insecure disables TLS (for development only).
	Insecure bool

	// Headers contains custom headers to send with each export.
	Headers map[string]string

	// Writer receives console output (default: os.Stdout).
	Writer io.Writer
}

// New creates the exporter described by cfg. TypeNone and the empty type
// return a nil exporter and no error.
func New(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeConsole:
		return NewConsoleExporter(cfg.Writer)
	case TypeOTLPHTTP:
		return NewOTLPHTTPExporter(ctx, cfg)
	case TypeOTLPGRPC:
		return NewOTLPGRPCExporter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown exporter type %q", cfg.Type)
	}
}
