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

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	authpoolerrors "github.com/tombee/authpool/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *authpoolerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &authpoolerrors.ValidationError{
				Field:      "max_total_connections",
				Message:    "must be > 0",
				Suggestion: "Use the default of 20",
			},
			wantMsg: "validation failed on max_total_connections: must be > 0",
		},
		{
			name: "without field",
			err: &authpoolerrors.ValidationError{
				Message: "invalid format",
			},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *authpoolerrors.ConfigError
		wantMsg string
	}{
		{
			name: "with key",
			err: &authpoolerrors.ConfigError{
				Key:    "http.read_timeout_ms",
				Reason: "must be > 0",
			},
			wantMsg: "config error at http.read_timeout_ms: must be > 0",
		},
		{
			name: "without key",
			err: &authpoolerrors.ConfigError{
				Reason: "file not found",
			},
			wantMsg: "config error: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("file read error")
	err := &authpoolerrors.ConfigError{
		Key:    "config",
		Reason: "failed to load",
		Cause:  cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("ConfigError.Unwrap() = %v, want %v", got, cause)
	}
}

var testInitMessage = authpoolerrors.ErrorMessage{
	Kind:        authpoolerrors.KindClientInitialization,
	Code:        "TEST-001",
	Message:     "Error while creating client",
	Description: "Could not create client for %s.",
}

func TestNewClientError(t *testing.T) {
	tests := []struct {
		name     string
		data     []any
		wantDesc string
	}{
		{
			name:     "without data keeps template",
			wantDesc: "Could not create client for %s.",
		},
		{
			name:     "with data substitutes template",
			data:     []any{"verifier"},
			wantDesc: "Could not create client for verifier.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authpoolerrors.NewClientError(testInitMessage, nil, tt.data...)
			if err.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", err.Description, tt.wantDesc)
			}
			if err.Code != "TEST-001" {
				t.Errorf("Code = %q, want %q", err.Code, "TEST-001")
			}
			if err.Kind != authpoolerrors.KindClientInitialization {
				t.Errorf("Kind = %q, want %q", err.Kind, authpoolerrors.KindClientInitialization)
			}
		})
	}
}

func TestClientError_Error(t *testing.T) {
	withoutCause := authpoolerrors.NewClientError(testInitMessage, nil)
	if got, want := withoutCause.Error(), "TEST-001: Error while creating client"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withCause := authpoolerrors.NewClientError(testInitMessage, errors.New("socket exhausted"))
	if got, want := withCause.Error(), "TEST-001: Error while creating client: socket exhausted"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClientError_IsMatchesKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("building client: %w", authpoolerrors.NewClientError(testInitMessage, cause))

	if !errors.Is(err, authpoolerrors.ErrClientInitialization) {
		t.Error("errors.Is should match ErrClientInitialization")
	}
	if errors.Is(err, authpoolerrors.ErrClientAccess) {
		t.Error("errors.Is should not match ErrClientAccess")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var target *authpoolerrors.ClientError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should find ClientError in wrapped error")
	}
	if target.Unwrap() != cause {
		t.Error("ClientError.Unwrap() should return root cause")
	}
}

func TestClientError_Interfaces(t *testing.T) {
	initErr := authpoolerrors.NewClientError(testInitMessage, nil, "verifier")
	accessErr := authpoolerrors.NewClientError(authpoolerrors.ErrorMessage{
		Kind:    authpoolerrors.KindClientAccess,
		Code:    "TEST-002",
		Message: "Error while getting client",
	}, nil)

	var uv authpoolerrors.UserVisibleError = initErr
	if !uv.IsUserVisible() {
		t.Error("expected ClientError to be user visible")
	}
	if uv.UserMessage() != "Error while creating client" {
		t.Errorf("UserMessage() = %q", uv.UserMessage())
	}
	if uv.Suggestion() != "Could not create client for verifier." {
		t.Errorf("Suggestion() = %q", uv.Suggestion())
	}

	var ec authpoolerrors.ErrorClassifier = initErr
	if ec.ErrorType() != "client_initialization" {
		t.Errorf("ErrorType() = %q", ec.ErrorType())
	}
	if !ec.IsRetryable() {
		t.Error("initialization errors should be retryable")
	}

	ec = accessErr
	if ec.ErrorType() != "client_access" {
		t.Errorf("ErrorType() = %q", ec.ErrorType())
	}
	if ec.IsRetryable() {
		t.Error("access errors should not be retryable")
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Run("ValidationError can be wrapped", func(t *testing.T) {
		original := &authpoolerrors.ValidationError{
			Field:   "user_agent",
			Message: "required",
		}
		wrapped := fmt.Errorf("validating client config: %w", original)

		var target *authpoolerrors.ValidationError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ValidationError in wrapped error")
		}
		if target.Field != "user_agent" {
			t.Errorf("unwrapped error Field = %q, want %q", target.Field, "user_agent")
		}
	})

	t.Run("ConfigError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("file not found")
		configErr := &authpoolerrors.ConfigError{
			Key:    "config_file",
			Reason: "failed to load",
			Cause:  rootCause,
		}
		wrapped := fmt.Errorf("loading config: %w", configErr)

		var target *authpoolerrors.ConfigError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ConfigError in wrapped error")
		}

		if target.Unwrap() != rootCause {
			t.Error("ConfigError.Unwrap() should return root cause")
		}
	})
}
