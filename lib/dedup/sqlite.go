// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/codec"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/sqlitepool"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS executed_runs (
	run_key     TEXT PRIMARY KEY,
	recorded_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS last_checked (
	pipeline_id TEXT PRIMARY KEY,
	checked_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS dispatches (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_key       TEXT NOT NULL,
	dispatched_at INTEGER NOT NULL,
	record        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS dispatches_by_time ON dispatches (dispatched_at);
`

// SQLiteConfig holds the parameters for OpenSQLite.
type SQLiteConfig struct {
	// Path is the database file. Parent directories are created.
	Path string

	// Clock stamps recorded_at on new keys. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// SQLiteStore keeps State in a SQLite database and additionally
// journals every dispatch with its command outcomes. It implements
// Store and Journal.
//
// Unlike FileStore, Save is incremental: keys already on disk keep
// their original recorded_at.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at config.Path.
func OpenSQLite(config SQLiteConfig) (*SQLiteStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("dedup: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("dedup: creating %s: %w", filepath.Dir(config.Path), err)
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   config.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, sqliteSchema, nil)
		},
	})
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{pool: pool, clock: clk, logger: logger}, nil
}

// Load reads every executed key and last-checked timestamp.
func (store *SQLiteStore) Load(ctx context.Context) (*State, error) {
	conn, err := store.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("dedup: load: %w", err)
	}
	defer store.pool.Put(conn)

	state := NewState()
	err = sqlitex.Execute(conn, "SELECT run_key FROM executed_runs", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			state.executed[stmt.ColumnText(0)] = struct{}{}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dedup: reading executed runs: %w", err)
	}

	err = sqlitex.Execute(conn, "SELECT pipeline_id, checked_at FROM last_checked", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			state.lastChecked[stmt.ColumnText(0)] = time.Unix(0, stmt.ColumnInt64(1)).UTC()
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dedup: reading last checked: %w", err)
	}

	store.logger.Info("state loaded", "backend", "sqlite", "executed_runs", state.Len())
	return state, nil
}

// Save brings the database in line with state in one transaction.
func (store *SQLiteStore) Save(ctx context.Context, state *State) (err error) {
	conn, err := store.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("dedup: save: %w", err)
	}
	defer store.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("dedup: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	var stale []string
	err = sqlitex.Execute(conn, "SELECT run_key FROM executed_runs", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if key := stmt.ColumnText(0); !state.Contains(key) {
				stale = append(stale, key)
			}
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("dedup: reading executed runs: %w", err)
	}
	for _, key := range stale {
		err = sqlitex.Execute(conn, "DELETE FROM executed_runs WHERE run_key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
		})
		if err != nil {
			return fmt.Errorf("dedup: deleting %s: %w", key, err)
		}
	}

	now := store.clock.Now().UnixNano()
	for _, key := range state.Keys() {
		err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO executed_runs (run_key, recorded_at) VALUES (?, ?)", &sqlitex.ExecOptions{
			Args: []any{key, now},
		})
		if err != nil {
			return fmt.Errorf("dedup: inserting %s: %w", key, err)
		}
	}

	for pipelineID, at := range state.LastChecked() {
		err = sqlitex.Execute(conn,
			"INSERT INTO last_checked (pipeline_id, checked_at) VALUES (?, ?) ON CONFLICT (pipeline_id) DO UPDATE SET checked_at = excluded.checked_at",
			&sqlitex.ExecOptions{Args: []any{pipelineID, at.UnixNano()}},
		)
		if err != nil {
			return fmt.Errorf("dedup: updating last checked for %s: %w", pipelineID, err)
		}
	}
	return nil
}

// RecordDispatch appends dispatch to the history table.
func (store *SQLiteStore) RecordDispatch(ctx context.Context, dispatch Dispatch) error {
	record, err := codec.Marshal(dispatch)
	if err != nil {
		return fmt.Errorf("dedup: encoding dispatch %s: %w", dispatch.RunKey, err)
	}

	conn, err := store.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("dedup: record dispatch: %w", err)
	}
	defer store.pool.Put(conn)

	err = sqlitex.Execute(conn, "INSERT INTO dispatches (run_key, dispatched_at, record) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []any{dispatch.RunKey, dispatch.At.UnixNano(), record},
	})
	if err != nil {
		return fmt.Errorf("dedup: inserting dispatch %s: %w", dispatch.RunKey, err)
	}
	return nil
}

// Dispatches returns up to limit journaled dispatches, newest first.
func (store *SQLiteStore) Dispatches(ctx context.Context, limit int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = 20
	}

	conn, err := store.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("dedup: dispatches: %w", err)
	}
	defer store.pool.Put(conn)

	var dispatches []Dispatch
	err = sqlitex.Execute(conn, "SELECT record FROM dispatches ORDER BY dispatched_at DESC, id DESC LIMIT ?", &sqlitex.ExecOptions{
		Args: []any{limit},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			record := make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, record)
			var dispatch Dispatch
			if err := codec.Unmarshal(record, &dispatch); err != nil {
				return fmt.Errorf("decoding dispatch record: %w", err)
			}
			dispatches = append(dispatches, dispatch)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dedup: reading dispatches: %w", err)
	}
	return dispatches, nil
}

// Close closes the connection pool.
func (store *SQLiteStore) Close() error {
	return store.pool.Close()
}
