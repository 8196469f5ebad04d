// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/atomicfile"
)

// FileStore keeps State in a JSON file:
//
//	{
//	  "last_checked_runs": {"1234": "2026-10-01T12:00:00Z"},
//	  "executed_runs": ["acme/api:1234:987654"]
//	}
//
// Output is byte-stable: keys and array entries are sorted and the
// indentation is fixed.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a FileStore for path. The file and its parent
// directories are created on first Save.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the state file location.
func (store *FileStore) Path() string { return store.path }

// fileDocument is the on-disk shape written by Save.
type fileDocument struct {
	LastCheckedRuns map[string]string `json:"last_checked_runs"`
	ExecutedRuns    []string          `json:"executed_runs"`
}

// Load reads the state file. A missing file is an empty state. A file
// that cannot be parsed is logged, renamed to CorruptPath so the next
// Save does not overwrite it, and treated as empty.
// Comments and trailing commas are tolerated, and older shapes are
// normalized: executed_runs may be an array or an object whose keys
// are the run keys, and last_checked_runs values may be timestamps
// or Unix seconds.
func (store *FileStore) Load(_ context.Context) (*State, error) {
	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		store.logger.Info("no state file, starting empty", "path", store.path)
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", store.path, err)
	}
	state, err := decodeState(jsonc.ToJSON(data), store.logger)
	if err != nil {
		store.quarantine(err)
		return NewState(), nil
	}
	store.logger.Info("state loaded", "path", store.path, "executed_runs", state.Len())
	return state, nil
}

// CorruptPath is where Load moves a state file it cannot parse.
func (store *FileStore) CorruptPath() string { return store.path + ".corrupt" }

func (store *FileStore) quarantine(parseErr error) {
	if err := os.Rename(store.path, store.CorruptPath()); err != nil {
		store.logger.Error("state file unreadable, starting empty",
			"path", store.path,
			"error", parseErr,
			"rename_error", err,
		)
		return
	}
	store.logger.Error("state file unreadable, moved aside and starting empty",
		"path", store.path,
		"moved_to", store.CorruptPath(),
		"error", parseErr,
	)
}

// Save writes state atomically.
func (store *FileStore) Save(_ context.Context, state *State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(store.path, data, 0600); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (store *FileStore) Close() error { return nil }

func encodeState(state *State) ([]byte, error) {
	document := fileDocument{
		LastCheckedRuns: make(map[string]string),
		ExecutedRuns:    state.Keys(),
	}
	if document.ExecutedRuns == nil {
		document.ExecutedRuns = []string{}
	}
	for pipelineID, at := range state.LastChecked() {
		document.LastCheckedRuns[pipelineID] = at.UTC().Format(time.RFC3339Nano)
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeState(data []byte, logger *slog.Logger) (*State, error) {
	state := NewState()
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}

	var raw struct {
		LastCheckedRuns map[string]json.RawMessage `json:"last_checked_runs"`
		ExecutedRuns    json.RawMessage            `json:"executed_runs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	keys, err := decodeExecuted(raw.ExecutedRuns)
	if err != nil {
		return nil, fmt.Errorf("executed_runs: %w", err)
	}
	for _, key := range keys {
		state.executed[key] = struct{}{}
	}

	for pipelineID, value := range raw.LastCheckedRuns {
		at, ok := decodeTimestamp(value)
		if !ok {
			logger.Warn("ignoring unreadable last_checked_runs entry",
				"pipeline_id", pipelineID,
				"value", string(value),
			)
			continue
		}
		state.lastChecked[pipelineID] = at
	}
	return state, nil
}

// decodeExecuted accepts null, an array of strings, or an object keyed
// by run key.
func decodeExecuted(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var keys []string
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return nil, err
		}
		return keys, nil
	case '{':
		var set map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &set); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(set))
		for key := range set {
			keys = append(keys, key)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("unsupported shape %.20q", trimmed)
	}
}

// isoLayouts are the timestamp forms accepted in last_checked_runs.
// Zone-less values are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func decodeTimestamp(raw json.RawMessage) (time.Time, bool) {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		for _, layout := range isoLayouts {
			if at, err := time.Parse(layout, text); err == nil {
				return at.UTC(), true
			}
		}
		return time.Time{}, false
	}
	seconds, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil {
		return time.Time{}, false
	}
	whole := int64(seconds)
	return time.Unix(whole, int64((seconds-float64(whole))*1e9)).UTC(), true
}
