// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern used when a test waits on a goroutine. They are the only
// place tests use wall-clock timeouts; everything else runs on
// clock.Fake. Failures call t.Fatalf.
package testutil
