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

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sirseerhq/list-relay/internal/archive"
	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/metadata"
	"github.com/sirseerhq/list-relay/internal/period"
	"github.com/sirseerhq/list-relay/internal/ratelimit"
)

// ProgressSink receives human-readable progress messages, in order. It must
// not block for long: the download waits for it.
type ProgressSink func(message string)

// StopReason tells why a download stopped walking the range.
type StopReason int

const (
	// StopExhausted means every month of the range was processed.
	StopExhausted StopReason = iota
	// StopUnproductiveRun means the unproductive threshold was reached.
	StopUnproductiveRun
	// StopCanceled means the download context was canceled.
	StopCanceled
)

func (s StopReason) String() string {
	switch s {
	case StopExhausted:
		return "exhausted"
	case StopUnproductiveRun:
		return "unproductive-run"
	case StopCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(s))
	}
}

// Record describes one file of a Result.
type Record struct {
	Period  period.Period
	Path    string
	Size    int64
	Skipped bool // present before the download, not fetched
}

// Result is what a download produced.
type Result struct {
	// Files lists the written (or already present) files, newest month
	// first.
	Files   []string
	Records []Record

	Stop StopReason

	// Attempted counts requests sent to the archive.
	Attempted int
	Empty     int
	Failed    int
	Skipped   int

	// Bytes is the total size of Files.
	Bytes int64

	// Stats is the full tracker snapshot, used for the metadata record.
	Stats metadata.Stats
}

// Options configures an Engine.
type Options struct {
	// Fetcher performs single-month requests. When nil, every download
	// builds an archive.Client from Request.APIBaseURL.
	Fetcher archive.Fetcher

	// Timeout bounds each request of the default client.
	// Default: archive.DefaultTimeout
	Timeout time.Duration

	// Transport is passed to the default client.
	Transport http.RoundTripper

	// Logger receives debug records for every state change and outcome.
	// Default: discard
	Logger *slog.Logger
}

// Engine runs downloads. It holds no per-download state and may be used for
// any number of downloads, concurrently.
type Engine struct {
	opts Options
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts}
}

// Download starts a download on a background goroutine and returns its
// handle immediately. Canceling ctx stops the download after the current
// request; the handle then resolves with the files written so far and
// context.Canceled. A nil sink discards progress.
func (e *Engine) Download(ctx context.Context, req Request, sink ProgressSink) *Handle {
	h := newHandle()
	go func() {
		res, err := e.Run(ctx, req, sink)
		h.resolve(res, err)
	}()
	return h
}

// Run performs a download on the calling goroutine. It returns an error
// wrapping errors.ErrConfiguration for an invalid request, before sending
// any request, or the context error when ctx is canceled. Per-month
// failures are never returned.
func (e *Engine) Run(ctx context.Context, req Request, sink ProgressSink) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	rng, err := req.Range()
	if err != nil {
		return Result{}, err
	}
	fetcher, err := e.fetcherFor(req)
	if err != nil {
		return Result{}, err
	}
	if sink == nil {
		sink = func(string) {}
	}

	r := &run{
		req:     req,
		rng:     rng,
		fetcher: fetcher,
		gate:    ratelimit.NewGate(),
		tracker: metadata.New(),
		sink:    sink,
		logger: e.opts.Logger.With(
			slog.String("list", req.List),
			slog.String("domain", req.Domain),
		),
	}
	res := r.execute(ctx)
	if res.Stop == StopCanceled {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		return res, context.Canceled
	}
	return res, nil
}

func (e *Engine) fetcherFor(req Request) (archive.Fetcher, error) {
	if e.opts.Fetcher != nil {
		return e.opts.Fetcher, nil
	}
	if req.APIBaseURL == "" {
		return nil, fmt.Errorf("%w: api base URL is required", relayerrors.ErrConfiguration)
	}
	client := archive.NewClient(archive.Options{
		BaseURL:   req.APIBaseURL,
		Timeout:   e.opts.Timeout,
		Transport: e.opts.Transport,
	})
	// Compose one URL up front so a malformed base URL fails before the walk.
	if _, err := client.RequestURL(req.Domain, req.List, req.Last); err != nil {
		return nil, fmt.Errorf("%w: %w", relayerrors.ErrConfiguration, err)
	}
	return client, nil
}

// State is the position of a download in its life cycle.
type State int

const (
	Running State = iota
	StoppedByExhaustion
	StoppedByUnproductiveRun
	StoppedByCancel
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case StoppedByExhaustion:
		return "stopped-by-exhaustion"
	case StoppedByUnproductiveRun:
		return "stopped-by-unproductive-run"
	case StoppedByCancel:
		return "stopped-by-cancel"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// run is the state of one download. It is owned by a single goroutine.
type run struct {
	req     Request
	rng     period.Range
	fetcher archive.Fetcher
	gate    *ratelimit.Gate
	tracker *metadata.Tracker
	sink    ProgressSink
	logger  *slog.Logger

	state         State
	unproductive  int
	files         []string
	records       []Record
	stopAt        period.Period
	stopReason    StopReason
	periodsWalked int
}

func (r *run) execute(ctx context.Context) Result {
	r.setState(Running)
	r.walk(ctx)

	switch r.state {
	case StoppedByUnproductiveRun:
		r.stopReason = StopUnproductiveRun
	case StoppedByCancel:
		r.stopReason = StopCanceled
	default:
		r.setState(StoppedByExhaustion)
		r.stopReason = StopExhausted
	}
	r.tracker.Finish()
	r.report()
	r.setState(Completed)

	stats := r.tracker.Stats()
	return Result{
		Files:     r.files,
		Records:   r.records,
		Stop:      r.stopReason,
		Attempted: stats.RequestCount,
		Empty:     stats.Empty,
		Failed:    stats.Failed,
		Skipped:   stats.Skipped,
		Bytes:     stats.TotalBytes,
		Stats:     stats,
	}
}

// walk processes months from the newest down, until the range is exhausted,
// the threshold is reached or ctx is canceled.
func (r *run) walk(ctx context.Context) {
	for p := range r.rng.Sequence() {
		if ctx.Err() != nil {
			r.setState(StoppedByCancel)
			return
		}
		r.periodsWalked++

		target := archive.TargetPath(r.req.OutputDir, r.req.Domain, r.req.List, p, r.req.Extension)
		if r.req.SkipExisting {
			if size, ok := existingFile(target); ok {
				r.skipped(p, target, size)
				continue
			}
		}

		if err := r.gate.Wait(ctx, r.req.MinRequestInterval); err != nil {
			r.setState(StoppedByCancel)
			return
		}

		r.emit("Fetching period %s for %s@%s...", p, r.req.List, r.req.Domain)
		started := time.Now()
		r.tracker.IncrementRequest()
		outcome := r.fetcher.Fetch(ctx, r.req.Domain, r.req.List, p, target)
		elapsed := time.Since(started)

		switch outcome.Kind {
		case archive.Produced:
			r.produced(p, outcome, elapsed)
		case archive.Empty:
			r.unproductive++
			r.tracker.RecordEmpty()
			r.logger.Debug("period empty", slog.String("period", p.String()))
			r.emit("No messages for period %s (%d of %d consecutive unproductive periods).",
				p, r.unproductive, r.req.MaxConsecutiveUnproductive)
		default:
			if ctx.Err() != nil && errors.Is(outcome.Err, context.Canceled) {
				r.setState(StoppedByCancel)
				return
			}
			r.unproductive++
			r.tracker.RecordFailed()
			r.logger.Debug("period failed",
				slog.String("period", p.String()),
				slog.Any("error", outcome.Err))
			r.emit("Failed to fetch period %s: %s (%d of %d consecutive unproductive periods).",
				p, archive.Describe(outcome.Err), r.unproductive, r.req.MaxConsecutiveUnproductive)
		}

		if r.unproductive >= r.req.MaxConsecutiveUnproductive {
			r.stopAt = p
			r.setState(StoppedByUnproductiveRun)
			return
		}
	}
}

func (r *run) produced(p period.Period, outcome archive.Outcome, elapsed time.Duration) {
	r.unproductive = 0
	r.files = append(r.files, outcome.Path)
	r.records = append(r.records, Record{Period: p, Path: outcome.Path, Size: outcome.Size})
	r.tracker.RecordProduced(p, outcome.Size)
	r.logger.Debug("period produced",
		slog.String("period", p.String()),
		slog.String("path", outcome.Path),
		slog.Int64("bytes", outcome.Size),
		slog.Duration("elapsed", elapsed))
	r.emit("Downloaded period %s to %s (%s) in %d ms.",
		p, outcome.Path, humanize.Bytes(uint64(outcome.Size)), elapsed.Milliseconds())
}

func (r *run) skipped(p period.Period, path string, size int64) {
	r.unproductive = 0
	r.files = append(r.files, path)
	r.records = append(r.records, Record{Period: p, Path: path, Size: size, Skipped: true})
	r.tracker.RecordSkipped(p, size)
	r.logger.Debug("period skipped", slog.String("period", p.String()), slog.String("path", path))
	r.emit("Skipping period %s for %s@%s: %s already present (%s).",
		p, r.req.List, r.req.Domain, path, humanize.Bytes(uint64(size)))
}

// report emits the closing progress line, which names the stop reason.
func (r *run) report() {
	switch r.stopReason {
	case StopUnproductiveRun:
		r.emit("Stopped at period %s after %d consecutive periods without messages; "+
			"the archive of %s@%s probably starts after %s. Increase the maximum number of failures to look further back.",
			r.stopAt, r.unproductive, r.req.List, r.req.Domain, r.stopAt)
	case StopCanceled:
		r.emit("Canceled after %d of %d periods.", r.periodsWalked, r.rng.Len())
	default:
		r.emit("Reached the first period %s of the range.", r.rng.First())
	}

	if len(r.files) == 0 {
		r.emit("No files were downloaded for %s@%s.", r.req.List, r.req.Domain)
		return
	}
	r.emit("Downloaded %d files (%s) for %s@%s.",
		len(r.files), humanize.Bytes(uint64(r.tracker.Stats().TotalBytes)), r.req.List, r.req.Domain)
}

func (r *run) setState(s State) {
	r.state = s
	r.logger.Debug("download state", slog.String("state", s.String()))
}

func (r *run) emit(format string, args ...any) {
	r.sink(fmt.Sprintf(format, args...))
}

// existingFile reports the size of a non-empty regular file at path.
func existingFile(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return 0, false
	}
	return info.Size(), true
}
