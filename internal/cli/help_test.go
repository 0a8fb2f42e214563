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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/tombee/authpool/internal/commands/shared"
)

func runHelp(t *testing.T, args ...string) (HelpResponse, error) {
	t.Helper()

	shared.SetJSONForTest(true)
	defer shared.SetJSONForTest(false)

	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"help"}, args...))

	var resp HelpResponse
	if err := root.Execute(); err != nil {
		return resp, err
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return resp, nil
}

func TestHelpJSON_ListsCommands(t *testing.T) {
	resp, err := runHelp(t)
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}

	if !resp.Success || resp.Command != nil {
		t.Errorf("unexpected response %+v", resp)
	}
	names := map[string]bool{}
	for _, c := range resp.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"policy", "probe", "version"} {
		if !names[want] {
			t.Errorf("expected %q in command list", want)
		}
	}
	if names["help"] {
		t.Error("help should not list itself")
	}
	if len(resp.GlobalFlags) == 0 {
		t.Error("expected global flags")
	}
}

func TestHelpJSON_SingleCommand(t *testing.T) {
	resp, err := runHelp(t, "probe")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}

	if resp.Command == nil {
		t.Fatal("expected command metadata")
	}
	if resp.Command.Name != "probe" || resp.Command.Group != "client" {
		t.Errorf("unexpected metadata %+v", resp.Command)
	}
	if resp.Command.Examples == "" {
		t.Error("expected examples")
	}

	flags := map[string]bool{}
	for _, f := range resp.Command.Flags {
		flags[f.Name] = true
	}
	if !flags["method"] || !flags["metrics"] {
		t.Errorf("expected method and metrics flags, got %+v", resp.Command.Flags)
	}
}

func TestHelp_UnknownCommand(t *testing.T) {
	if _, err := runHelp(t, "nope"); err == nil {
		t.Error("expected error for unknown command")
	}
}
