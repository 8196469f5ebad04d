// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// State is the in-memory dedup state: the set of run keys whose
// actions have been dispatched, and the last time each pipeline was
// polled. Keys are held as strings so that entries which no longer
// parse (from older releases or hand edits) survive until retention
// removes them.
//
// State is safe for concurrent use. Callers that need check-then-mark
// atomicity across a dispatch hold their own lock around both calls.
type State struct {
	mu          sync.RWMutex
	executed    map[string]struct{}
	lastChecked map[string]time.Time
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		executed:    make(map[string]struct{}),
		lastChecked: make(map[string]time.Time),
	}
}

// IsExecuted reports whether key has been dispatched.
func (state *State) IsExecuted(key RunKey) bool {
	return state.Contains(key.String())
}

// Contains reports whether the raw key is present.
func (state *State) Contains(key string) bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	_, ok := state.executed[key]
	return ok
}

// MarkExecuted records key as dispatched.
func (state *State) MarkExecuted(key RunKey) {
	state.add(key.String())
}

func (state *State) add(key string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.executed[key] = struct{}{}
}

// Forget removes raw keys and returns how many were present.
func (state *State) Forget(keys ...string) int {
	state.mu.Lock()
	defer state.mu.Unlock()
	removed := 0
	for _, key := range keys {
		if _, ok := state.executed[key]; ok {
			delete(state.executed, key)
			removed++
		}
	}
	return removed
}

// Keys returns the executed keys in sorted order.
func (state *State) Keys() []string {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return slices.Sorted(maps.Keys(state.executed))
}

// Len returns the number of executed keys.
func (state *State) Len() int {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return len(state.executed)
}

// SetLastChecked records when a pipeline's runs were last listed.
func (state *State) SetLastChecked(pipelineID string, at time.Time) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.lastChecked[pipelineID] = at.UTC()
}

// LastChecked returns a copy of the per-pipeline poll times.
func (state *State) LastChecked() map[string]time.Time {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return maps.Clone(state.lastChecked)
}
