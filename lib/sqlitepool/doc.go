// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens zombiezen.com/go/sqlite connection pools
// with a fixed set of pragmas: WAL journaling, NORMAL synchronous,
// a 5 second busy timeout, and in-memory temp storage.
//
// It backs the optional sqlite dedup store. Callers write plain SQL
// with sqlitex.Execute and manage transactions with
// sqlitex.ImmediateTransaction; the package adds no query layer.
package sqlitepool
