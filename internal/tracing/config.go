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
	"fmt"

	"github.com/tombee/authpool/internal/tracing/export"
)

// Config holds trace export configuration.
type Config struct {
	// Exporter selects the span destination: "none", "console", "otlp-http"
	// or "otlp-grpc".
	// Environment: AUTHPOOL_TRACE_EXPORTER
	// Default: none
	Exporter string `yaml:"exporter" json:"exporter"`

	// Endpoint is the OTLP receiver (host:port). Required for OTLP exporters.
	// Environment: AUTHPOOL_TRACE_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// Insecure disables TLS to the OTLP receiver.
	Insecure bool `yaml:"insecure" json:"insecure"`

	// Headers are sent with every OTLP export.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// SampleRate is the fraction of root traces recorded (0.0 - 1.0).
	// Environment: AUTHPOOL_TRACE_SAMPLE_RATE
	// Default: 1.0
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`

	// ServiceName identifies this process in traces.
	// Default: authpool
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// DefaultConfig returns configuration with export disabled.
func DefaultConfig() Config {
	return Config{
		Exporter:    export.TypeNone,
		SampleRate:  1.0,
		ServiceName: "authpool",
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	switch c.Exporter {
	case export.TypeNone, export.TypeConsole:
	case export.TypeOTLPHTTP, export.TypeOTLPGRPC:
		if c.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required for exporter %q", c.Exporter)
		}
	default:
		return fmt.Errorf("tracing.exporter must be one of [none, console, otlp-http, otlp-grpc], got %q", c.Exporter)
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if c.ServiceName == "" {
		return fmt.Errorf("tracing.service_name is required")
	}
	return nil
}

// exportConfig converts the settings for export.New.
func (c Config) exportConfig() export.Config {
	return export.Config{
		Type:     c.Exporter,
		Endpoint: c.Endpoint,
		Insecure: c.Insecure,
		Headers:  c.Headers,
	}
}
