// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

// RetentionAge is how long an executed run is remembered after its
// last update.
const RetentionAge = 7 * 24 * time.Hour

// RetentionInterval is how often Prune runs from the cycle loop.
const RetentionInterval = time.Hour

// PruneReport counts what one Prune pass did.
type PruneReport struct {
	Checked  int
	Evicted  int
	Retained int

	// Errors counts keys kept because the provider could not be
	// asked about them.
	Errors int
}

// Prune evicts executed keys that no longer need remembering: keys
// that do not parse, runs the provider reports as gone, and runs last
// updated more than RetentionAge before now. A key whose run cannot be
// fetched for any other reason is kept for the next pass.
func Prune(ctx context.Context, source RunSource, state *dedup.State, now time.Time, logger *slog.Logger) PruneReport {
	var report PruneReport
	var evict []string

	for _, raw := range state.Keys() {
		if ctx.Err() != nil {
			break
		}
		report.Checked++

		key, err := dedup.ParseRunKey(raw)
		if err != nil {
			logger.Warn("evicting unparseable run key", "run_key", raw, "error", err)
			evict = append(evict, raw)
			continue
		}

		run, err := source.GetRun(ctx, key.Repository, key.RunID)
		switch {
		case errors.Is(err, ErrRunNotFound):
			logger.Debug("evicting run no longer known to provider", "run_key", raw)
			evict = append(evict, raw)
		case err != nil:
			logger.Debug("keeping run key, lookup failed", "run_key", raw, "error", err)
			report.Errors++
		case !run.UpdatedAt.IsZero() && now.Sub(run.UpdatedAt) > RetentionAge:
			logger.Debug("evicting expired run", "run_key", raw, "updated_at", run.UpdatedAt)
			evict = append(evict, raw)
		}
	}

	report.Evicted = state.Forget(evict...)
	report.Retained = state.Len()
	return report
}
