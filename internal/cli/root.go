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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/authpool/internal/commands/policy"
	"github.com/tombee/authpool/internal/commands/probe"
	"github.com/tombee/authpool/internal/commands/shared"
	versioncmd "github.com/tombee/authpool/internal/commands/version"
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root command with global flags and every
// subcommand registered.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authpool",
		Short: "authpool - shared pooled HTTP client for identity verification calls",
		Long: `authpool builds the process-wide HTTP client used to call a remote
identity-verification service: one bounded connection pool, 3 second
connect, read and pool acquisition timeouts, and no redirects unless
configured.

Run 'authpool policy' to see the effective limits.
Run 'authpool probe <url>' to send a request through the shared client.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	verbose, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/authpool/config.yaml)")

	cmd.AddCommand(policy.NewCommand())
	cmd.AddCommand(probe.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())

	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// GetVersion returns the current version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError prints err and exits with its exit code
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
