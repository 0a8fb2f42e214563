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

package errors

import (
	"fmt"
)

// ValidationError represents an invalid setting or argument.
type ValidationError struct {
	// Field identifies which setting failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "http.read_timeout_ms")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ClientErrorKind identifies which shared client operation failed.
type ClientErrorKind string

const (
	// KindClientInitialization means the connection pool or transport
	// could not be constructed.
	KindClientInitialization ClientErrorKind = "client_initialization"

	// KindClientAccess means the transport was requested from a manager
	// that does not hold one.
	KindClientAccess ClientErrorKind = "client_access"
)

// ErrorMessage is a catalog entry: a stable code, a short message and a
// description template that may take positional data.
type ErrorMessage struct {
	Kind        ClientErrorKind
	Code        string
	Message     string
	Description string
}

// ClientError reports a failure to build or hand out the shared HTTP client.
type ClientError struct {
	// Kind classifies the failure
	Kind ClientErrorKind

	// Code is the stable error code from the message catalog
	Code string

	// Message is the short human-readable message
	Message string

	// Description is the longer explanation, with any data already substituted
	Description string

	// Cause is the underlying error (nil for access errors)
	Cause error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrClientInitialization = &ClientError{Kind: KindClientInitialization}
	ErrClientAccess         = &ClientError{Kind: KindClientAccess}
)

// NewClientError builds a ClientError from a catalog entry. When data is
// non-empty it is substituted into the description template.
func NewClientError(msg ErrorMessage, cause error, data ...any) *ClientError {
	description := msg.Description
	if len(data) > 0 {
		description = fmt.Sprintf(description, data...)
	}
	return &ClientError{
		Kind:        msg.Kind,
		Code:        msg.Code,
		Message:     msg.Message,
		Description: description,
		Cause:       cause,
	}
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ClientError of the same kind.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsUserVisible implements UserVisibleError.
func (e *ClientError) IsUserVisible() bool {
	return true
}

// UserMessage implements UserVisibleError.
func (e *ClientError) UserMessage() string {
	return e.Message
}

// Suggestion implements UserVisibleError.
func (e *ClientError) Suggestion() string {
	return e.Description
}

// ErrorType implements ErrorClassifier.
func (e *ClientError) ErrorType() string {
	return string(e.Kind)
}

// IsRetryable implements ErrorClassifier. A failed initialization may be
// attempted again; a missing transport will not appear by retrying.
func (e *ClientError) IsRetryable() bool {
	return e.Kind == KindClientInitialization
}
