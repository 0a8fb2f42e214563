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
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/authpool/pkg/errors"
)

// Exit codes for CLI commands
const (
	ExitSuccess          = 0
	ExitRequestFailed    = 1
	ExitConfigError      = 2
	ExitClientInitFailed = 3
)

// ExitError is an error that carries a specific exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewRequestError creates an error for a request that could not complete (exit code 1)
func NewRequestError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitRequestFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewConfigError creates an error for unusable configuration (exit code 2)
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitConfigError,
		Message: msg,
		Cause:   cause,
	}
}

// NewClientInitError creates an error for a shared client that could not be built (exit code 3)
func NewClientInitError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitClientInitFailed,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the exit code for err. Errors without an ExitError in
// their chain map to ExitRequestFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitRequestFailed
}

// HandleExitError prints err and any suggestion to stderr and exits with
// the matching code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	printError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err.Error())

	// Walk the error chain to find a UserVisibleError
	for e := err; e != nil; e = errors.Unwrap(e) {
		if userErr, ok := e.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() && userErr.Suggestion() != "" {
				fmt.Fprintf(w, "\nSuggestion: %s\n", userErr.Suggestion())
			}
			return
		}
	}
}
