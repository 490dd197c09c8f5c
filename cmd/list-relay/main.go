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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "list-relay",
		Short: "Download monthly mailing list archives",
		Long: `List Relay downloads the archive of a mailing list one month at a time
from a Pony Mail style mbox endpoint, such as the one behind lists.apache.org.
Each month is written to its own file, newest first, until the requested range
is exhausted or the list's history appears to have begun.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", relayerrors.ErrConfiguration, err)
	})

	rootCmd.AddCommand(newFetchCommand())
	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) {
		return 130 // Interrupted
	}

	if errors.Is(err, relayerrors.ErrConfiguration) ||
		errors.Is(err, relayerrors.ErrOutputDir) {
		return 2 // Configuration errors
	}

	if errors.Is(err, relayerrors.ErrNetworkFailure) ||
		errors.Is(err, relayerrors.ErrTimeout) {
		return 3 // Network errors
	}

	return 1 // General error
}
