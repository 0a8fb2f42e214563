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
	authpoolerrors "github.com/tombee/authpool/pkg/errors"
)

// Error catalog for the shared client lifecycle.
var (
	// MsgCreatingHTTPClient is reported when the pool or transport could
	// not be built. The description takes the underlying error text.
	MsgCreatingHTTPClient = authpoolerrors.ErrorMessage{
		Kind:        authpoolerrors.KindClientInitialization,
		Code:        "AUTHPOOL-65001",
		Message:     "error while creating the HTTP client",
		Description: "Server error encountered while creating the HTTP client: %s",
	}

	// MsgGettingHTTPClient is reported when a manager holds no client.
	MsgGettingHTTPClient = authpoolerrors.ErrorMessage{
		Kind:        authpoolerrors.KindClientAccess,
		Code:        "AUTHPOOL-65002",
		Message:     "error while getting the HTTP client",
		Description: "Server error encountered while getting the HTTP client.",
	}
)
