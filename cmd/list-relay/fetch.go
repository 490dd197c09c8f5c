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
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/list-relay/internal/config"
	"github.com/sirseerhq/list-relay/internal/engine"
	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/metadata"
	"github.com/sirseerhq/list-relay/internal/output"
	"github.com/sirseerhq/list-relay/internal/period"
	"github.com/sirseerhq/list-relay/pkg/version"
)

// fetchOptions holds the raw flag values of the fetch command.
type fetchOptions struct {
	list            string
	domain          string
	from            period.Period
	until           period.Period
	outputDir       string
	maxFailures     int
	requestInterval int64
	apiURL          string
	timeout         time.Duration
	ext             string
	skipExisting    bool
	manifest        string
	writeMetadata   bool
	configPath      string
	logLevel        string
}

// newFetchCommand creates the fetch command
func newFetchCommand() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch -l <list> -d <domain>",
		Short: "Download the monthly archives of a mailing list",
		Long: `Download the monthly mbox archives of a mailing list, newest month first.

Every month between --from and --until is requested once. A month without
messages, or one that fails, counts as unproductive; after --max-failures
unproductive months in a row the download stops, assuming the list did not
exist before. Increase --max-failures for lists with long quiet periods.

Files are written as <domain>_<list>_<YYYY-MM>.mbox in the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd.Flags(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.list, "list", "l", "", "Mailing list name, e.g. dev (required)")
	f.StringVarP(&opts.domain, "domain", "d", "", "Mailing list domain, e.g. hadoop.apache.org (required)")
	f.Var(newPeriodValue(&opts.from), "from", "First month to fetch (default: ten years before now)")
	f.Var(newPeriodValue(&opts.until), "until", "Last month to fetch (default: current month)")
	f.StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default: ./emails)")
	f.IntVar(&opts.maxFailures, "max-failures", 0, "Consecutive unproductive months before stopping (default: 10)")
	f.Int64Var(&opts.requestInterval, "request-interval", 0, "Minimum milliseconds between requests (default: 1000)")
	f.StringVar(&opts.apiURL, "api-url", "", "Archive mbox endpoint (default: https://lists.apache.org/api/mbox.lua)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Timeout of a single request (default: 5s)")
	f.StringVar(&opts.ext, "ext", "", "Extension of the written files (default: mbox)")
	f.BoolVar(&opts.skipExisting, "skip-existing", false, "Do not fetch months whose file is already present")
	f.StringVar(&opts.manifest, "manifest", "", "Write an NDJSON manifest of the files to this path, or - for stdout")
	f.BoolVar(&opts.writeMetadata, "metadata", false, "Write a fetch metadata record to the output directory")
	f.StringVar(&opts.configPath, "config", "", "Config file (default: .list-relay.yaml or ~/.list-relay/config.yaml)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default: info)")

	return cmd
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, flags *pflag.FlagSet, opts fetchOptions, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", relayerrors.ErrConfiguration, err)
	}
	applyFlagOverrides(cfg, flags, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, level)

	req, err := buildRequest(cfg, flags, opts, period.Now())
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		if period.IsInvalidRange(err) {
			return fmt.Errorf("%w (check --from and --until)", err)
		}
		return err
	}
	if err := ensureOutputDir(req.OutputDir); err != nil {
		return err
	}

	logger.Info("starting download",
		slog.String("list", config.ListKey(req.List, req.Domain)),
		slog.String("from", req.First.String()),
		slog.String("until", req.Last.String()),
		slog.String("output", req.OutputDir),
		slog.Int("max_failures", req.MaxConsecutiveUnproductive),
		slog.Duration("interval", req.MinRequestInterval))

	eng := engine.New(engine.Options{
		Timeout: cfg.Archive.Timeout,
		Logger:  logger,
	})
	h := eng.Download(ctx, req, progressSink(stderr, logger))

	// The download stops on its own when ctx is canceled; wait for it so
	// the files written so far are still reported.
	res, runErr := h.Wait(context.WithoutCancel(ctx))
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	logger.Info("download finished",
		slog.String("stop_reason", res.Stop.String()),
		slog.Int("files", len(res.Files)),
		slog.String("size", humanize.Bytes(uint64(res.Bytes))),
		slog.Int("requests", res.Attempted))

	if opts.manifest != "" {
		if err := writeManifest(opts.manifest, stdout, res.Records); err != nil {
			return err
		}
	}

	if opts.writeMetadata {
		md := metadata.GenerateMetadata(version.Version, fetchParams(req), res.Stats, res.Stop.String(), res.Files)
		path, err := metadata.SaveMetadata(md, req.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to save metadata: %w", err)
		}
		fmt.Fprintf(stderr, "Metadata written to %s\n", path)
	}

	return runErr
}

// applyFlagOverrides copies explicitly set flags that have a config file
// counterpart into cfg.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet, opts fetchOptions) {
	if flags.Changed("api-url") {
		cfg.Archive.APIURL = opts.apiURL
	}
	if flags.Changed("timeout") {
		cfg.Archive.Timeout = opts.timeout
	}
	if flags.Changed("ext") {
		cfg.Archive.Extension = opts.ext
	}
	if flags.Changed("output") {
		cfg.Defaults.OutputDir = opts.outputDir
	}
	if flags.Changed("skip-existing") {
		cfg.Defaults.SkipExisting = opts.skipExisting
	}
	if flags.Changed("log-level") {
		cfg.Defaults.LogLevel = opts.logLevel
	}
}

// buildRequest resolves the download request from flags and configuration.
func buildRequest(cfg *config.Config, flags *pflag.FlagSet, opts fetchOptions, now period.Period) (engine.Request, error) {
	if opts.list == "" {
		return engine.Request{}, fmt.Errorf("%w: --list is required", relayerrors.ErrConfiguration)
	}
	if opts.domain == "" {
		return engine.Request{}, fmt.Errorf("%w: --domain is required", relayerrors.ErrConfiguration)
	}
	key := config.ListKey(opts.list, opts.domain)

	req := engine.Request{
		Domain:                     opts.domain,
		List:                       opts.list,
		OutputDir:                  cfg.Defaults.OutputDir,
		First:                      cfg.GetFrom(key, now),
		Last:                       now,
		MaxConsecutiveUnproductive: cfg.GetMaxFailures(key),
		MinRequestInterval:         cfg.GetRequestInterval(key),
		APIBaseURL:                 cfg.Archive.APIURL,
		Extension:                  cfg.Archive.Extension,
		SkipExisting:               cfg.Defaults.SkipExisting,
	}

	if flags.Changed("from") {
		req.First = opts.from
	}
	if flags.Changed("until") {
		req.Last = opts.until
	}
	if flags.Changed("max-failures") {
		req.MaxConsecutiveUnproductive = opts.maxFailures
	}
	if flags.Changed("request-interval") {
		if opts.requestInterval < 0 {
			return engine.Request{}, fmt.Errorf("%w: --request-interval must not be negative, got %d",
				relayerrors.ErrConfiguration, opts.requestInterval)
		}
		req.MinRequestInterval = time.Duration(opts.requestInterval) * time.Millisecond
	}

	return req, nil
}

// ensureOutputDir creates dir if it does not exist.
func ensureOutputDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", relayerrors.ErrConfiguration, dir)
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", relayerrors.ErrOutputDir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", relayerrors.ErrOutputDir, err)
	}
	return nil
}

// writeManifest writes one NDJSON line per file to path, or to stdout when
// path is "-".
func writeManifest(path string, stdout io.Writer, records []engine.Record) error {
	var writer output.ManifestWriter
	if path == "-" {
		writer = output.NewWriter(stdout)
	} else {
		fileWriter, err := output.NewFileWriter(path)
		if err != nil {
			return err
		}
		writer = fileWriter
	}
	defer writer.Close()

	for _, rec := range records {
		entry := output.Entry{
			Period:  rec.Period.String(),
			Path:    rec.Path,
			Bytes:   rec.Size,
			Skipped: rec.Skipped,
		}
		if err := writer.Write(entry); err != nil {
			return err
		}
	}
	return writer.Close()
}

func fetchParams(req engine.Request) metadata.FetchParams {
	return metadata.FetchParams{
		Domain:                     req.Domain,
		List:                       req.List,
		From:                       req.First,
		Until:                      req.Last,
		MaxConsecutiveUnproductive: req.MaxConsecutiveUnproductive,
		RequestIntervalMillis:      req.MinRequestInterval.Milliseconds(),
		APIURL:                     req.APIBaseURL,
		SkipExisting:               req.SkipExisting,
	}
}
