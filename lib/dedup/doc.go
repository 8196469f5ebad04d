// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package dedup holds the set of workflow runs whose actions have
// already been dispatched, and persists it between restarts.
//
// A run is identified by a [RunKey]. [State] is the in-memory set;
// a [Store] loads and saves it. Two stores exist: [FileStore] writes a
// single JSON document atomically, and [SQLiteStore] keeps the set in
// a database and also implements [Journal], recording each dispatch
// with its per-command outcomes for later inspection.
package dedup
