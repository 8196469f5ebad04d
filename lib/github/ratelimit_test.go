// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

var rateLimitEpoch = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func rateLimitHeader(remaining string, reset time.Time) http.Header {
	header := http.Header{}
	header.Set("X-RateLimit-Remaining", remaining)
	header.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	return header
}

func TestRateLimitTrackerSnapshot(t *testing.T) {
	tracker := newRateLimitTracker(clock.Fake(rateLimitEpoch))
	if got := tracker.snapshot(); got != -1 {
		t.Fatalf("snapshot before any response = %d, want -1", got)
	}

	tracker.update(rateLimitHeader("4321", rateLimitEpoch.Add(time.Hour)))
	if got := tracker.snapshot(); got != 4321 {
		t.Errorf("snapshot = %d, want 4321", got)
	}

	tracker.update(http.Header{})
	tracker.update(rateLimitHeader("not a number", rateLimitEpoch))
	if got := tracker.snapshot(); got != 4321 {
		t.Errorf("snapshot after headerless responses = %d, want 4321", got)
	}
}

func TestRateLimitTrackerWaitsForReset(t *testing.T) {
	fake := clock.Fake(rateLimitEpoch)
	tracker := newRateLimitTracker(fake)
	tracker.update(rateLimitHeader("0", rateLimitEpoch.Add(30*time.Second)))

	done := make(chan error, 1)
	go func() { done <- tracker.wait(context.Background()) }()

	fake.WaitForTimers(1)
	select {
	case <-done:
		t.Fatal("wait returned before the reset time")
	default:
	}
	fake.Advance(30 * time.Second)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return after the reset time")
	}
}

func TestRateLimitTrackerWaitHonoursContext(t *testing.T) {
	tracker := newRateLimitTracker(clock.Fake(rateLimitEpoch))
	tracker.update(rateLimitHeader("0", rateLimitEpoch.Add(time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tracker.wait(ctx); err != context.Canceled {
		t.Errorf("wait = %v, want context.Canceled", err)
	}
}

func TestRateLimitBackoff(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{"retry after", http.Header{"Retry-After": {"7"}}, 7 * time.Second},
		{"reset", rateLimitHeader("0", rateLimitEpoch.Add(90*time.Second)), 90 * time.Second},
		{"reset in the past", rateLimitHeader("0", rateLimitEpoch.Add(-time.Minute)), 0},
		{"no hint", http.Header{}, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := rateLimitBackoff(test.header, rateLimitEpoch); got != test.want {
				t.Errorf("rateLimitBackoff = %v, want %v", got, test.want)
			}
		})
	}
}
