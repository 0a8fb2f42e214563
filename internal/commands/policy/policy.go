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

// Package policy implements the command that reports the shared client's
// effective request policy and pool limits.
package policy

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/authpool/internal/commands/shared"
	"github.com/tombee/authpool/pkg/httpclient"
)

// PolicyInfo is the effective configuration of the constructed client.
type PolicyInfo struct {
	ConnectTimeoutMs         int64  `json:"connect_timeout_ms"`
	ReadTimeoutMs            int64  `json:"read_timeout_ms"`
	PoolAcquireTimeoutMs     int64  `json:"pool_acquire_timeout_ms"`
	RedirectsEnabled         bool   `json:"redirects_enabled"`
	RelativeRedirectsAllowed bool   `json:"relative_redirects_allowed"`
	MaxTotalConnections      int    `json:"max_total_connections"`
	MaxPerRouteConnections   int    `json:"max_per_route_connections"`
	UserAgent                string `json:"user_agent"`
}

// PolicyResponse is the JSON output of the policy command.
type PolicyResponse struct {
	shared.JSONResponse
	Policy PolicyInfo `json:"policy"`
}

// NewCommand creates the policy command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Show the shared HTTP client's policy and pool limits",
		Long: `Build the shared HTTP client from the loaded configuration and print
the timeouts, redirect rules and connection pool limits it enforces.

Exit codes:
  0 - Policy printed
  2 - Configuration could not be loaded
  3 - Client could not be initialized`,
		Annotations: map[string]string{
			"group": "client",
		},
		Args: cobra.NoArgs,
		RunE: runPolicy,
	}
}

func runPolicy(cmd *cobra.Command, args []string) error {
	client, cfg, err := shared.SharedClient(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shared.ShutdownClient(ctx)
	}()

	info := describe(client, cfg.HTTP.UserAgent)

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), PolicyResponse{
			JSONResponse: shared.NewJSONResponse("policy", true),
			Policy:       info,
		})
	}
	writeText(cmd.OutOrStdout(), info)
	return nil
}

func describe(client *httpclient.Client, userAgent string) PolicyInfo {
	policy := client.Policy()
	return PolicyInfo{
		ConnectTimeoutMs:         policy.ConnectTimeout.Milliseconds(),
		ReadTimeoutMs:            policy.ReadTimeout.Milliseconds(),
		PoolAcquireTimeoutMs:     policy.PoolAcquireTimeout.Milliseconds(),
		RedirectsEnabled:         policy.RedirectsEnabled,
		RelativeRedirectsAllowed: policy.RelativeRedirectsAllowed,
		MaxTotalConnections:      client.Pool().MaxTotal(),
		MaxPerRouteConnections:   client.Pool().MaxPerRoute(),
		UserAgent:                userAgent,
	}
}

func writeText(w io.Writer, info PolicyInfo) {
	fmt.Fprintln(w, "Request policy")
	fmt.Fprintf(w, "  connect timeout:      %d ms\n", info.ConnectTimeoutMs)
	fmt.Fprintf(w, "  read timeout:         %d ms\n", info.ReadTimeoutMs)
	fmt.Fprintf(w, "  pool acquire timeout: %d ms\n", info.PoolAcquireTimeoutMs)
	fmt.Fprintf(w, "  redirects:            %s\n", enabled(info.RedirectsEnabled))
	fmt.Fprintf(w, "  relative redirects:   %s\n", enabled(info.RelativeRedirectsAllowed))
	fmt.Fprintln(w, "Connection pool")
	fmt.Fprintf(w, "  max total:            %d\n", info.MaxTotalConnections)
	fmt.Fprintf(w, "  max per route:        %d\n", info.MaxPerRouteConnections)
	fmt.Fprintf(w, "User agent: %s\n", info.UserAgent)
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
