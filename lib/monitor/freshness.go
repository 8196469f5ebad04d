// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"
	"slices"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

// FreshnessWindow is how long after its last update a successful run
// is still eligible. The bound is inclusive.
const FreshnessWindow = 300 * time.Second

const conclusionSuccess = "success"

// SelectFresh returns, in input order, the runs that concluded
// successfully, have not been executed, are on an allowed branch (an
// empty allow-list allows every branch), and were updated within
// FreshnessWindow of now. A run without an update time is kept.
func SelectFresh(runs []RunRecord, now time.Time, state *dedup.State, branches []string) []RunRecord {
	return selectFresh(runs, now, state, branches, nil)
}

func selectFresh(runs []RunRecord, now time.Time, state *dedup.State, branches []string, logger *slog.Logger) []RunRecord {
	var fresh []RunRecord
	for _, run := range runs {
		reason := rejection(run, now, state, branches)
		if reason == "" {
			fresh = append(fresh, run)
			continue
		}
		if logger != nil {
			logger.Debug("run not eligible",
				"run_id", run.RunID,
				"run_number", run.RunNumber,
				"branch", run.Branch,
				"reason", reason,
			)
		}
	}
	return fresh
}

// rejection returns why run is not eligible, or "" when it is.
func rejection(run RunRecord, now time.Time, state *dedup.State, branches []string) string {
	if run.Conclusion != conclusionSuccess {
		return "conclusion " + run.Conclusion
	}
	if state.IsExecuted(run.Key()) {
		return "already executed"
	}
	if len(branches) > 0 && !slices.Contains(branches, run.Branch) {
		return "branch not monitored"
	}
	if !run.UpdatedAt.IsZero() && now.Sub(run.UpdatedAt) > FreshnessWindow {
		return "older than freshness window"
	}
	return ""
}
