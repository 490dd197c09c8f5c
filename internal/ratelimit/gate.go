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
// Package ratelimit paces outbound requests to an archive server.
//
// A Gate enforces a minimum spacing between successive calls to Wait. The
// first call never blocks; a call made sooner than the configured interval
// after the previous one blocks for exactly the remaining time. Every call
// counts as the previous one for the next, whatever interval it was made
// with. Timing is taken from Go's monotonic clock, so adjustments to the
// wall clock do not shorten or stretch a wait.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces out requests issued by a single fetch task. It is not safe
// for concurrent use; a fetch walks its periods sequentially and owns its
// gate.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
	last     time.Time
}

// NewGate returns a gate with no interval configured. The interval is
// supplied on each call to Wait.
func NewGate() *Gate {
	return &Gate{}
}

// Wait blocks until at least minInterval has elapsed since the previous
// call, then records the current call. A non-positive interval never
// blocks but is still recorded. If ctx ends first, Wait returns ctx.Err()
// and the call is not recorded. A deadline that falls before the next
// allowed call is waited out rather than reported early.
func (g *Gate) Wait(ctx context.Context, minInterval time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	if minInterval <= 0 {
		g.limiter = nil
		g.interval = 0
		g.last = now
		return nil
	}

	if g.limiter == nil || minInterval != g.interval {
		g.limiter = anchoredLimiter(minInterval, g.last)
		g.interval = minInterval
	}

	res := g.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay <= 0 {
		g.last = now
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		g.last = time.Now()
		return nil
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	}
}

// Interval returns the interval applied by the most recent call to Wait.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// anchoredLimiter returns a limiter allowing one call per interval whose
// single token was already spent at last. A zero last leaves the token
// available.
func anchoredLimiter(interval time.Duration, last time.Time) *rate.Limiter {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	if !last.IsZero() {
		lim.ReserveN(last, 1)
	}
	return lim
}
