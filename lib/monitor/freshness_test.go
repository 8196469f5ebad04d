// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"slices"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

func runIDs(runs []RunRecord) []int64 {
	var ids []int64
	for _, run := range runs {
		ids = append(ids, run.RunID)
	}
	return ids
}

func TestSelectFreshWindowBoundary(t *testing.T) {
	runs := []RunRecord{
		successfulRun("acme/api", 1, 1, "main", testNow.Add(-299*time.Second)),
		successfulRun("acme/api", 1, 2, "main", testNow.Add(-301*time.Second)),
		successfulRun("acme/api", 1, 3, "main", testNow.Add(-FreshnessWindow)),
		successfulRun("acme/api", 1, 4, "main", time.Time{}),
	}
	got := runIDs(SelectFresh(runs, testNow, dedup.NewState(), nil))
	if want := []int64{1, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("SelectFresh = %v, want %v", got, want)
	}
}

func TestSelectFreshFilters(t *testing.T) {
	failed := successfulRun("acme/api", 1, 10, "main", testNow)
	failed.Conclusion = "failure"
	executed := successfulRun("acme/api", 1, 11, "main", testNow)
	otherBranch := successfulRun("acme/api", 1, 12, "feature/x", testNow)
	eligible := successfulRun("acme/api", 1, 13, "main", testNow)

	state := dedup.NewState()
	state.MarkExecuted(executed.Key())

	runs := []RunRecord{failed, executed, otherBranch, eligible}
	if got := runIDs(SelectFresh(runs, testNow, state, []string{"main"})); !slices.Equal(got, []int64{13}) {
		t.Errorf("with branch filter = %v, want [13]", got)
	}
	if got := runIDs(SelectFresh(runs, testNow, state, nil)); !slices.Equal(got, []int64{12, 13}) {
		t.Errorf("without branch filter = %v, want [12 13]", got)
	}
}

func TestSelectFreshPreservesOrder(t *testing.T) {
	runs := []RunRecord{
		successfulRun("acme/api", 1, 30, "main", testNow),
		successfulRun("acme/api", 1, 10, "main", testNow),
		successfulRun("acme/api", 1, 20, "main", testNow),
	}
	if got := runIDs(SelectFresh(runs, testNow, dedup.NewState(), nil)); !slices.Equal(got, []int64{30, 10, 20}) {
		t.Errorf("SelectFresh = %v, want input order", got)
	}
}
