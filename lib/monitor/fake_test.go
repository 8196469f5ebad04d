// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/action"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// fakeSource is an in-memory RunSource.
type fakeSource struct {
	mu        sync.Mutex
	pipelines map[string][]Pipeline
	runs      map[int64][]RunRecord
	listErr   map[string]error
	getErr    map[int64]error
	authors   map[string]string

	// block, when set, makes ListMonitoredPipelines for these
	// repositories wait for context cancellation.
	block map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pipelines: make(map[string][]Pipeline),
		runs:      make(map[int64][]RunRecord),
		listErr:   make(map[string]error),
		getErr:    make(map[int64]error),
		authors:   make(map[string]string),
		block:     make(map[string]bool),
	}
}

func (source *fakeSource) addRun(run RunRecord) {
	source.mu.Lock()
	defer source.mu.Unlock()
	found := false
	for _, pipeline := range source.pipelines[run.Repository] {
		if pipeline.ID == run.PipelineID {
			found = true
		}
	}
	if !found {
		source.pipelines[run.Repository] = append(source.pipelines[run.Repository], Pipeline{
			Repository: run.Repository,
			ID:         run.PipelineID,
			Name:       run.PipelineName,
			Path:       ".github/workflows/ci.yml",
		})
	}
	source.runs[run.PipelineID] = append(source.runs[run.PipelineID], run)
}

func (source *fakeSource) ListMonitoredPipelines(ctx context.Context, repository string) ([]Pipeline, error) {
	source.mu.Lock()
	block := source.block[repository]
	err := source.listErr[repository]
	pipelines := source.pipelines[repository]
	source.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return pipelines, nil
}

func (source *fakeSource) ListCompletedRuns(_ context.Context, pipeline Pipeline) ([]RunRecord, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	return append([]RunRecord(nil), source.runs[pipeline.ID]...), nil
}

func (source *fakeSource) GetRun(_ context.Context, repository string, runID int64) (RunRecord, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if err := source.getErr[runID]; err != nil {
		return RunRecord{}, err
	}
	for _, runs := range source.runs {
		for _, run := range runs {
			if run.Repository == repository && run.RunID == runID {
				return run, nil
			}
		}
	}
	return RunRecord{}, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
}

func (source *fakeSource) CommitAuthor(_ context.Context, _ string, sha string) (string, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	author, ok := source.authors[sha]
	if !ok {
		return "", errors.New("commit not found")
	}
	return author, nil
}

// fakeRunner records every command it is asked to run.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []runnerCall
	outcomes map[string]action.OutcomeKind
}

type runnerCall struct {
	command    string
	runContext action.RunContext
}

func (runner *fakeRunner) Run(_ context.Context, definition action.Definition, runContext action.RunContext) action.Outcome {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	runner.calls = append(runner.calls, runnerCall{command: definition.Name, runContext: runContext})
	kind := runner.outcomes[definition.Name]
	outcome := action.Outcome{Kind: kind, Command: definition.Name}
	if kind == action.NonZeroExit {
		outcome.ExitCode = 1
	}
	return outcome
}

func (runner *fakeRunner) commands() []string {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	var names []string
	for _, call := range runner.calls {
		names = append(names, call.command)
	}
	return names
}

// countingStore wraps a Store and counts saves.
type countingStore struct {
	dedup.Store
	mu    sync.Mutex
	saves int
}

func (store *countingStore) Save(ctx context.Context, state *dedup.State) error {
	store.mu.Lock()
	store.saves++
	store.mu.Unlock()
	return store.Store.Save(ctx, state)
}

func (store *countingStore) saveCount() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.saves
}

// memoryJournal collects dispatch records.
type memoryJournal struct {
	mu         sync.Mutex
	dispatches []dedup.Dispatch
}

func (journal *memoryJournal) RecordDispatch(_ context.Context, dispatch dedup.Dispatch) error {
	journal.mu.Lock()
	defer journal.mu.Unlock()
	journal.dispatches = append(journal.dispatches, dispatch)
	return nil
}

// observerFunc adapts a function to Observer.
type observerFunc func(CycleReport)

func (f observerFunc) ObserveCycle(report CycleReport) { f(report) }

func successfulRun(repository string, pipelineID, runID int64, branch string, updated time.Time) RunRecord {
	return RunRecord{
		Repository:   repository,
		PipelineID:   pipelineID,
		PipelineName: "CI",
		RunID:        runID,
		RunNumber:    runID % 1000,
		Status:       "completed",
		Conclusion:   "success",
		Branch:       branch,
		CommitSHA:    fmt.Sprintf("sha%d", runID),
		CommitTitle:  "Fix login",
		UpdatedAt:    updated,
	}
}
