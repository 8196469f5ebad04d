// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor is the polling engine. Each cycle a [Monitor] hands
// every configured repository to a [Scanner] through a fixed-size
// worker pool. The scanner lists completed runs from a [RunSource],
// keeps the fresh successful ones ([SelectFresh]), and dispatches
// their commands at most once per run, recording each dispatched run
// in the shared dedup state. After the workers rejoin, state is saved
// and, once an hour, old entries are pruned ([Prune]).
package monitor
