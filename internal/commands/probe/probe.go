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

// Package probe implements the command that sends one request through the
// shared HTTP client.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/authpool/internal/commands/shared"
	"github.com/tombee/authpool/internal/metrics"
	"github.com/tombee/authpool/internal/tracing"
)

// ProbeResult describes one request sent through the shared client.
type ProbeResult struct {
	Method        string `json:"method"`
	URL           string `json:"url"`
	Status        int    `json:"status,omitempty"`
	Location      string `json:"location,omitempty"`
	Bytes         int64  `json:"bytes"`
	DurationMs    int64  `json:"duration_ms"`
	CorrelationID string `json:"correlation_id"`
	Error         string `json:"error,omitempty"`
}

// ProbeResponse is the JSON output of the probe command.
type ProbeResponse struct {
	shared.JSONResponse
	Result ProbeResult `json:"result"`
}

type probeOptions struct {
	method      string
	showMetrics bool
}

// NewCommand creates the probe command
func NewCommand() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Send one request through the shared HTTP client",
		Long: `Send a single request through the shared, pooled HTTP client and report
the status, duration and correlation ID. Redirects are reported, not
followed, unless the configuration enables them.

Exit codes:
  0 - A response was received
  1 - The request failed (connect, read or pool timeout, refused, ...)
  2 - Configuration could not be loaded
  3 - Client could not be initialized`,
		Annotations: map[string]string{
			"group": "client",
		},
		Example: `  authpool probe https://verify.example.com/rp/versioncheck
  authpool probe --method HEAD https://verify.example.com/health --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method to send")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print client metrics after the request")

	return cmd
}

func runProbe(cmd *cobra.Command, rawURL string, opts *probeOptions) error {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return shared.NewRequestError(fmt.Sprintf("invalid URL %q", rawURL), err)
	}

	client, _, err := shared.SharedClient(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shared.ShutdownClient(ctx)
	}()

	// Reuse a correlation ID already carried by the command context.
	corrID := tracing.FromContext(cmd.Context())
	ctx := tracing.ToContext(cmd.Context(), corrID)

	result := ProbeResult{
		Method:        strings.ToUpper(opts.method),
		URL:           target.Redacted(),
		CorrelationID: corrID.String(),
	}

	req, err := http.NewRequestWithContext(ctx, result.Method, target.String(), nil)
	if err != nil {
		return shared.NewRequestError("failed to build request", err)
	}

	start := time.Now()
	probeErr := send(client.Do, req, &result)
	result.DurationMs = time.Since(start).Milliseconds()
	if probeErr != nil {
		result.Error = probeErr.Error()
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(out, ProbeResponse{
			JSONResponse: shared.NewJSONResponse("probe", probeErr == nil),
			Result:       result,
		}); err != nil {
			return err
		}
	} else {
		writeText(out, result)
		if opts.showMetrics {
			fmt.Fprintln(out)
			if err := metrics.Write(out); err != nil {
				return err
			}
		}
	}

	if probeErr != nil {
		return shared.NewRequestError("probe failed", probeErr)
	}
	return nil
}

// send issues req and drains the body so the pooled connection is returned.
func send(do func(*http.Request) (*http.Response, error), req *http.Request, result *ProbeResult) error {
	resp, err := do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		result.Location = resp.Header.Get("Location")
	}

	n, err := io.Copy(io.Discard, resp.Body)
	result.Bytes = n
	return err
}

func writeText(w io.Writer, r ProbeResult) {
	fmt.Fprintf(w, "%s %s\n", r.Method, r.URL)
	if r.Status != 0 {
		fmt.Fprintf(w, "  status:         %d %s\n", r.Status, http.StatusText(r.Status))
	}
	if r.Location != "" {
		fmt.Fprintf(w, "  location:       %s (not followed)\n", r.Location)
	}
	fmt.Fprintf(w, "  bytes:          %d\n", r.Bytes)
	fmt.Fprintf(w, "  duration:       %d ms\n", r.DurationMs)
	fmt.Fprintf(w, "  correlation id: %s\n", r.CorrelationID)
	if r.Error != "" {
		fmt.Fprintf(w, "  error:          %s\n", r.Error)
	}
}
