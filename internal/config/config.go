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

// Package config loads authpool settings from a YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, then
// environment variables. Zero values left by a partial file are filled from
// the defaults before the environment is applied.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/authpool/internal/log"
	"github.com/tombee/authpool/internal/tracing"
	authpoolerrors "github.com/tombee/authpool/pkg/errors"
	"github.com/tombee/authpool/pkg/httpclient"
)

// Config represents the complete authpool configuration.
type Config struct {
	HTTP    httpclient.Config `yaml:"http" json:"http"`
	Log     LogConfig         `yaml:"log" json:"log"`
	Tracing tracing.Config    `yaml:"tracing" json:"tracing"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Environment: LOG_LEVEL
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format sets the output format (json, text).
	// Environment: LOG_FORMAT
	// Default: json
	Format string `yaml:"format" json:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source" json:"add_source"`
}

// LoggerConfig converts the settings for log.New.
func (c LogConfig) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = log.Format(c.Format)
	cfg.AddSource = c.AddSource
	return cfg
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		HTTP: httpclient.DefaultConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Load reads configuration from configPath. An empty configPath means the
// default location from ConfigPath, which is skipped when the file does not
// exist. An explicitly named file must exist.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	path := configPath
	if path == "" {
		defaultPath, err := ConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		err := cfg.loadFromFile(path)
		switch {
		case err == nil:
		case configPath == "" && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, &authpoolerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, &authpoolerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills in zero values so minimal configs work.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.HTTP.ConnectTimeoutMs == 0 {
		c.HTTP.ConnectTimeoutMs = defaults.HTTP.ConnectTimeoutMs
	}
	if c.HTTP.ReadTimeoutMs == 0 {
		c.HTTP.ReadTimeoutMs = defaults.HTTP.ReadTimeoutMs
	}
	if c.HTTP.PoolAcquireTimeoutMs == 0 {
		c.HTTP.PoolAcquireTimeoutMs = defaults.HTTP.PoolAcquireTimeoutMs
	}
	if c.HTTP.MaxTotalConnections == 0 {
		c.HTTP.MaxTotalConnections = defaults.HTTP.MaxTotalConnections
	}
	if c.HTTP.MaxPerRouteConnections == 0 {
		c.HTTP.MaxPerRouteConnections = defaults.HTTP.MaxPerRouteConnections
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaults.HTTP.UserAgent
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return authpoolerrors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return authpoolerrors.Wrapf(err, "failed to parse YAML in %s", filepath.Base(path))
	}

	return nil
}

// loadFromEnv applies environment overrides. Malformed numbers and booleans
// are reported rather than ignored.
func (c *Config) loadFromEnv() error {
	ints := []struct {
		key    string
		target *int
	}{
		{"AUTHPOOL_CONNECT_TIMEOUT_MS", &c.HTTP.ConnectTimeoutMs},
		{"AUTHPOOL_READ_TIMEOUT_MS", &c.HTTP.ReadTimeoutMs},
		{"AUTHPOOL_POOL_ACQUIRE_TIMEOUT_MS", &c.HTTP.PoolAcquireTimeoutMs},
		{"AUTHPOOL_MAX_TOTAL_CONNECTIONS", &c.HTTP.MaxTotalConnections},
		{"AUTHPOOL_MAX_PER_ROUTE_CONNECTIONS", &c.HTTP.MaxPerRouteConnections},
	}
	for _, e := range ints {
		val := os.Getenv(e.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return envError(e.key, val, err)
		}
		*e.target = n
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"AUTHPOOL_FOLLOW_REDIRECTS", &c.HTTP.FollowRedirects},
		{"AUTHPOOL_ALLOW_RELATIVE_REDIRECTS", &c.HTTP.AllowRelativeRedirects},
		{"LOG_SOURCE", &c.Log.AddSource},
	}
	for _, e := range bools {
		val := os.Getenv(e.key)
		if val == "" {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError(e.key, val, err)
		}
		*e.target = b
	}

	if val := os.Getenv("AUTHPOOL_USER_AGENT"); val != "" {
		c.HTTP.UserAgent = val
	}
	if val := os.Getenv("AUTHPOOL_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("AUTHPOOL_TRACE_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := os.Getenv("AUTHPOOL_TRACE_SAMPLE_RATE"); val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return envError("AUTHPOOL_TRACE_SAMPLE_RATE", val, err)
		}
		c.Tracing.SampleRate = rate
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}

	return nil
}

func envError(key, val string, err error) error {
	return &authpoolerrors.ConfigError{
		Key:    key,
		Reason: fmt.Sprintf("invalid value %q", val),
		Cause:  err,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return authpoolerrors.Wrap(err, "http")
	}

	var errs []string

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
