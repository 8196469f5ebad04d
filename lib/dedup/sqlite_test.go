// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

func openTestSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(SQLiteConfig{
		Path:  path,
		Clock: clock.Fake(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestSQLiteStoreSaveAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "state.db")
	store := openTestSQLite(t, path)

	state := NewState()
	state.MarkExecuted(RunKey{Repository: "acme/api", PipelineID: 1, RunID: 10})
	state.MarkExecuted(RunKey{Repository: "acme/api", PipelineID: 1, RunID: 11})
	checked := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	state.SetLastChecked("1", checked)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	state.Forget("acme/api:1:10")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"acme/api:1:11"}; !slices.Equal(loaded.Keys(), want) {
		t.Errorf("keys = %v, want %v", loaded.Keys(), want)
	}
	if got := loaded.LastChecked()["1"]; !got.Equal(checked) {
		t.Errorf("last checked = %v, want %v", got, checked)
	}
}

func TestSQLiteStoreEmpty(t *testing.T) {
	store := openTestSQLite(t, filepath.Join(t.TempDir(), "state.db"))
	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Len() != 0 {
		t.Errorf("Len = %d, want 0", state.Len())
	}
}

func TestSQLiteStoreJournal(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t, filepath.Join(t.TempDir(), "state.db"))

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for index, runKey := range []string{"acme/api:1:10", "acme/api:1:11", "acme/api:1:12"} {
		err := store.RecordDispatch(ctx, Dispatch{
			RunKey: runKey,
			Branch: "main",
			At:     base.Add(time.Duration(index) * time.Minute),
			Marked: index != 1,
			Commands: []CommandRecord{
				{Name: "deploy", Outcome: "success", Duration: 2 * time.Second},
				{Name: "notify", Outcome: "non_zero_exit", ExitCode: 3, Duration: time.Second},
			},
		})
		if err != nil {
			t.Fatalf("RecordDispatch(%s): %v", runKey, err)
		}
	}

	dispatches, err := store.Dispatches(ctx, 2)
	if err != nil {
		t.Fatalf("Dispatches: %v", err)
	}
	if len(dispatches) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(dispatches))
	}
	newest := dispatches[0]
	if newest.RunKey != "acme/api:1:12" || !newest.Marked || newest.Branch != "main" {
		t.Errorf("newest dispatch = %+v", newest)
	}
	if !newest.At.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("newest At = %v", newest.At)
	}
	if len(newest.Commands) != 2 || newest.Commands[1].ExitCode != 3 || newest.Commands[0].Duration != 2*time.Second {
		t.Errorf("newest commands = %+v", newest.Commands)
	}
	if dispatches[1].RunKey != "acme/api:1:11" || dispatches[1].Marked {
		t.Errorf("second dispatch = %+v", dispatches[1])
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(SQLiteConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
