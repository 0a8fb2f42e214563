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

// Package clientmanager owns the process-wide shared HTTP client.
//
// The client is built lazily on first use and then handed to every caller:
//
//	manager, err := clientmanager.GetInstance()
//	if err != nil {
//	    return err
//	}
//	client, err := manager.GetHTTPClient()
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Do(req)
//
// Construction runs at most once per Provider at a time; concurrent first
// callers block on the same attempt and receive the same Manager. A failed
// attempt leaves nothing behind, so the next call tries again.
//
// Hosts that load settings from a file call Configure before the first
// GetInstance. Tests build their own Provider with NewProvider instead of
// touching the package-level default.
package clientmanager
