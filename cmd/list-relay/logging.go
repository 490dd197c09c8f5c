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
	"io"
	"log/slog"

	"github.com/sirseerhq/list-relay/internal/engine"
)

// newLogger returns a text logger on w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// progressSink prints each message as a line on w and mirrors it to the
// logger at debug level.
func progressSink(w io.Writer, logger *slog.Logger) engine.ProgressSink {
	return func(msg string) {
		_, _ = io.WriteString(w, msg+"\n")
		logger.Debug("progress", slog.String("message", msg))
	}
}
