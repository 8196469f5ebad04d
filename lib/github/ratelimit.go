// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

// rateLimitWindow is the request budget reported by one response.
type rateLimitWindow struct {
	remaining int
	reset     time.Time
}

// parseRateLimit reads X-RateLimit-Remaining and X-RateLimit-Reset.
// ok is false unless both are present and numeric.
func parseRateLimit(header http.Header) (window rateLimitWindow, ok bool) {
	remaining, err := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return rateLimitWindow{}, false
	}
	reset, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return rateLimitWindow{}, false
	}
	return rateLimitWindow{remaining: remaining, reset: time.Unix(reset, 0)}, true
}

// rateLimitTracker keeps the budget from the latest response that
// carried one and holds requests while that budget is spent.
type rateLimitTracker struct {
	clock clock.Clock

	mu     sync.Mutex
	latest *rateLimitWindow
}

func newRateLimitTracker(clock clock.Clock) *rateLimitTracker {
	return &rateLimitTracker{clock: clock}
}

func (tracker *rateLimitTracker) update(header http.Header) {
	window, ok := parseRateLimit(header)
	if !ok {
		return
	}
	tracker.mu.Lock()
	tracker.latest = &window
	tracker.mu.Unlock()
}

// wait returns immediately unless the last known budget is zero, in
// which case it sleeps until the window resets or ctx ends.
func (tracker *rateLimitTracker) wait(ctx context.Context) error {
	tracker.mu.Lock()
	latest := tracker.latest
	tracker.mu.Unlock()
	if latest == nil || latest.remaining > 0 {
		return nil
	}

	delay := latest.reset.Sub(tracker.clock.Now())
	if delay <= 0 {
		return nil
	}
	select {
	case <-tracker.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// snapshot returns the remaining budget, or -1 when unknown.
func (tracker *rateLimitTracker) snapshot() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.latest == nil {
		return -1
	}
	return tracker.latest.remaining
}

// rateLimitBackoff is how long to hold off after a rate limited
// response at now: Retry-After when it names a positive number of
// seconds, otherwise the time left in the reported window. Zero means
// the response gave no usable hint.
func rateLimitBackoff(header http.Header, now time.Time) time.Duration {
	if seconds, err := strconv.Atoi(header.Get("Retry-After")); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if reset, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		return max(time.Unix(reset, 0).Sub(now), 0)
	}
	return 0
}
