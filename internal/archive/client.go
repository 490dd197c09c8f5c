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

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	relayerrors "github.com/sirseerhq/list-relay/internal/errors"
	"github.com/sirseerhq/list-relay/internal/period"
	"github.com/sirseerhq/list-relay/pkg/version"
)

// DefaultBaseURL is the Apache mailing list archive mbox endpoint.
const DefaultBaseURL = "https://lists.apache.org/api/mbox.lua"

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 5 * time.Second

// partSuffix marks a file that is still being written.
const partSuffix = ".part"

// ErrInvalidRequest is reported for malformed fetch inputs, such as an
// empty list name or an unparsable base URL.
var ErrInvalidRequest = errors.New("archive: invalid request")

// StatusError is the failure reason for a response with status >= 400.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpStatus=%d", e.Code)
}

// Options configures the archive client.
type Options struct {
	// BaseURL is the archive endpoint. Query parameters already present
	// are kept.
	// Default: DefaultBaseURL
	BaseURL string

	// Timeout bounds each request.
	// Default: 5s
	Timeout time.Duration

	// Transport is the underlying round tripper.
	// Default: http.DefaultTransport
	Transport http.RoundTripper

	// UserAgent is sent with every request.
	// Default: version.UserAgent()
	UserAgent string
}

// DefaultOptions returns options targeting the Apache archive.
func DefaultOptions() Options {
	return Options{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: version.UserAgent(),
	}
}

// Client is the HTTP implementation of Fetcher.
type Client struct {
	client *http.Client
	opts   Options
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		client: &http.Client{
			Transport: &userAgentTransport{base: base, userAgent: opts.UserAgent},
		},
		opts: opts,
	}
}

// Options returns the effective options of the client.
func (c *Client) Options() Options {
	return c.opts
}

// RequestURL composes the endpoint URL for one list and period.
func (c *Client) RequestURL(domain, list string, p period.Period) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: archive URL %q is not absolute", ErrInvalidRequest, c.opts.BaseURL)
	}

	q := u.Query()
	q.Set("domain", domain)
	q.Set("list", list)
	q.Set("d", p.String())
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Fetch issues one GET for the period and streams the body to target.
//
// The body is written to target+".part" and renamed onto target once it is
// complete, so a failed or empty period never leaves a file behind and a
// repeated fetch replaces the previous file instead of appending to it.
func (c *Client) Fetch(ctx context.Context, domain, list string, p period.Period, target string) Outcome {
	if domain == "" || list == "" || target == "" || p.IsZero() {
		return FailedOutcome(fmt.Errorf("%w: domain, list, period and target are required", ErrInvalidRequest))
	}

	reqURL, err := c.RequestURL(domain, list, p)
	if err != nil {
		return FailedOutcome(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return FailedOutcome(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FailedOutcome(c.transportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return FailedOutcome(&StatusError{Code: resp.StatusCode, URL: reqURL})
	}

	return c.writeBody(ctx, resp.Body, target)
}

// writeBody streams body into target via a temporary file.
func (c *Client) writeBody(ctx context.Context, body io.Reader, target string) Outcome {
	tmp := target + partSuffix
	file, err := os.Create(tmp)
	if err != nil {
		return FailedOutcome(fmt.Errorf("create archive file: %w", err))
	}

	n, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	if copyErr != nil {
		_ = os.Remove(tmp)
		return FailedOutcome(c.transportError(ctx, copyErr))
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return FailedOutcome(fmt.Errorf("close archive file: %w", closeErr))
	}

	if n == 0 {
		_ = os.Remove(tmp)
		return EmptyOutcome()
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return FailedOutcome(fmt.Errorf("rename archive file: %w", err))
	}

	return ProducedOutcome(target, n)
}

// transportError maps a request or body-read error onto the sentinel
// taxonomy. Our own deadline is reported as ErrTimeout; a cancellation of
// the caller's context is passed through unchanged.
func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || NewInspector().IsTimeout(err) {
		return fmt.Errorf("%w after %s", relayerrors.ErrTimeout, c.opts.Timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("write archive file: %w", err)
	}
	return fmt.Errorf("%w: %w", relayerrors.ErrNetworkFailure, err)
}

// userAgentTransport stamps the User-Agent header on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
