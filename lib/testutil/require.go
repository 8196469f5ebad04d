// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// TB is the part of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value sent on ch. The test fails if
// nothing arrives within timeout or ch is closed first. what describes
// the awaited value in the failure message.
//
//	report := testutil.RequireReceive(t, reports, 5*time.Second, "cycle report")
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, what ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value, open := <-ch:
		if !open {
			t.Fatalf("%s: channel closed before a value arrived", describe(what))
		}
		return value
	case <-timer.C:
		t.Fatalf("%s: nothing received within %v", describe(what), timeout)
	}
	var zero T
	return zero
}

// RequireClosed fails the test unless ch is closed (or receives)
// within timeout.
//
//	testutil.RequireClosed(t, serverDone, 5*time.Second, "status server stopped")
func RequireClosed(t TB, ch <-chan struct{}, timeout time.Duration, what ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("%s: channel still open after %v", describe(what), timeout)
	}
}

// describe renders what as a format string with arguments, or as a
// single value.
func describe(what []any) string {
	switch {
	case len(what) == 0:
		return "channel wait"
	case len(what) == 1:
		return fmt.Sprint(what[0])
	}
	if format, ok := what[0].(string); ok {
		return fmt.Sprintf(format, what[1:]...)
	}
	return fmt.Sprint(what...)
}
