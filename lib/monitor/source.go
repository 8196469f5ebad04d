// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

// ErrRunNotFound is returned (possibly wrapped) by RunSource.GetRun
// when the CI provider no longer knows the run.
var ErrRunNotFound = errors.New("monitor: run not found")

// Pipeline is one monitored workflow of a repository.
type Pipeline struct {
	Repository string
	ID         int64
	Name       string

	// Path is the workflow file, e.g. ".github/workflows/ci.yml".
	Path string
}

// RunRecord is a snapshot of one workflow run as reported by the
// provider.
type RunRecord struct {
	Repository   string
	PipelineID   int64
	PipelineName string
	RunID        int64
	RunNumber    int64
	Status       string
	Conclusion   string
	Branch       string
	CommitSHA    string
	CommitTitle  string

	// UpdatedAt is zero when the provider did not report it.
	UpdatedAt time.Time
}

// Key returns the dedup key of the run.
func (run RunRecord) Key() dedup.RunKey {
	return dedup.RunKey{Repository: run.Repository, PipelineID: run.PipelineID, RunID: run.RunID}
}

// RunSource is the CI provider as seen by the monitor.
type RunSource interface {
	// ListMonitoredPipelines returns the repository's workflows that
	// should be watched.
	ListMonitoredPipelines(ctx context.Context, repository string) ([]Pipeline, error)

	// ListCompletedRuns returns the most recent completed runs of the
	// pipeline, newest first.
	ListCompletedRuns(ctx context.Context, pipeline Pipeline) ([]RunRecord, error)

	// GetRun returns a single run. The error matches ErrRunNotFound
	// when the run no longer exists.
	GetRun(ctx context.Context, repository string, runID int64) (RunRecord, error)

	// CommitAuthor returns the display name of the commit's author.
	CommitAuthor(ctx context.Context, repository, sha string) (string, error)
}
