// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrConfiguration indicates invalid input detected before any network
	// activity, such as a period range whose first month is after its last.
	// Maps to exit code 2.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOutputDir indicates the output directory is missing, is not a
	// directory, or cannot be created.
	// Maps to exit code 2.
	ErrOutputDir = errors.New("output directory unavailable")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrTimeout indicates a request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
)
