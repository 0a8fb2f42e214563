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

package clientmanager

import (
	"context"

	"github.com/tombee/authpool/pkg/httpclient"
)

var defaultProvider = NewProvider()

// Default returns the process-wide Provider.
func Default() *Provider {
	return defaultProvider
}

// GetInstance returns the process-wide Manager, building it on first use.
func GetInstance() (*Manager, error) {
	return defaultProvider.GetInstance()
}

// GetHTTPClient returns the process-wide shared client.
func GetHTTPClient() (*httpclient.Client, error) {
	return defaultProvider.GetHTTPClient()
}

// Configure sets the process-wide client configuration. Call it before the
// first GetInstance.
func Configure(cfg httpclient.Config, opts ...httpclient.Option) error {
	return defaultProvider.Configure(cfg, opts...)
}

// Shutdown drains and discards the process-wide client.
func Shutdown(ctx context.Context) error {
	return defaultProvider.Shutdown(ctx)
}
