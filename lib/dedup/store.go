// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"context"
	"time"
)

// Store persists State between process runs.
type Store interface {
	// Load returns the persisted state, or an empty State when none
	// has been saved yet.
	Load(ctx context.Context) (*State, error)

	// Save persists state. Saving unchanged state is idempotent.
	Save(ctx context.Context, state *State) error

	// Close releases the store's resources.
	Close() error
}

// Journal records the outcome of every dispatch. Stores that keep a
// dispatch history implement it alongside Store.
type Journal interface {
	RecordDispatch(ctx context.Context, dispatch Dispatch) error
}

// Dispatch is one handled run: which commands ran and how each ended.
type Dispatch struct {
	RunKey   string          `cbor:"run_key"`
	Branch   string          `cbor:"branch"`
	At       time.Time       `cbor:"at"`
	Marked   bool            `cbor:"marked"`
	Commands []CommandRecord `cbor:"commands"`
}

// CommandRecord summarises one command outcome for the journal.
type CommandRecord struct {
	Name     string        `cbor:"name"`
	Outcome  string        `cbor:"outcome"`
	ExitCode int           `cbor:"exit_code,omitempty"`
	Duration time.Duration `cbor:"duration"`
}
