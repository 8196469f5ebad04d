// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time so that polling loops, rate limit
// backoff, retention schedules and log rotation can be driven
// deterministically in tests.
//
// Components take a Clock in their Config struct and default to
// Real() when it is nil. Tests construct a Fake, start the component,
// wait for it to block on a timer, and then move time forward:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop(ctx, fake)
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
