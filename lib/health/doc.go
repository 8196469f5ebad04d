// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package health reports liveness of the monitor loop. FileReporter
// keeps a timestamped health file fresh for external checkers, and
// Status serves /healthz, /readyz and /status over HTTP. Both are
// monitor.Observers fed with every completed cycle.
package health
