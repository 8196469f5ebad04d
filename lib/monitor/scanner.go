// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/action"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

// CommandRunner executes one command definition. *action.Runner
// implements it.
type CommandRunner interface {
	Run(ctx context.Context, definition action.Definition, runContext action.RunContext) action.Outcome
}

// ScannerConfig holds the parameters for NewScanner.
type ScannerConfig struct {
	Source   RunSource
	State    *dedup.State
	Resolver *action.Resolver
	Runner   CommandRunner

	// Journal, when set, records every dispatch.
	Journal dedup.Journal

	// Branches restricts monitoring to these branches. Empty means all.
	Branches []string

	Clock  clock.Clock
	Logger *slog.Logger
}

// Scanner checks one repository at a time for fresh successful runs
// and dispatches their commands. A Scanner is shared by every worker
// of a cycle; dispatches are serialized so that the dedup check, the
// commands, and the mark happen as one step.
type Scanner struct {
	source   RunSource
	state    *dedup.State
	resolver *action.Resolver
	runner   CommandRunner
	journal  dedup.Journal
	branches []string
	clock    clock.Clock
	logger   *slog.Logger

	dispatchMu sync.Mutex
}

// NewScanner returns a Scanner for config. Source, State, Resolver and
// Runner are required.
func NewScanner(config ScannerConfig) *Scanner {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		source:   config.Source,
		state:    config.State,
		resolver: config.Resolver,
		runner:   config.Runner,
		journal:  config.Journal,
		branches: config.Branches,
		clock:    clk,
		logger:   logger,
	}
}

// ScanRepository checks every monitored pipeline of repository. It
// returns false only when the pipelines could not be listed; errors
// for a single pipeline are logged and that pipeline is skipped.
// Cancellation is checked between pipelines and between runs.
func (scanner *Scanner) ScanRepository(ctx context.Context, repository string) bool {
	logger := scanner.logger.With("repository", repository)

	pipelines, err := scanner.source.ListMonitoredPipelines(ctx, repository)
	if err != nil {
		logger.Error("listing workflows failed", "error", err)
		return false
	}
	logger.Debug("scanning repository", "workflows", len(pipelines))

	for _, pipeline := range pipelines {
		if ctx.Err() != nil {
			logger.Info("scan interrupted", "error", ctx.Err())
			return true
		}
		scanner.scanPipeline(ctx, pipeline, logger.With("workflow", pipeline.Name, "workflow_id", pipeline.ID))
	}
	return true
}

func (scanner *Scanner) scanPipeline(ctx context.Context, pipeline Pipeline, logger *slog.Logger) {
	runs, err := scanner.source.ListCompletedRuns(ctx, pipeline)
	if err != nil {
		logger.Warn("listing runs failed", "error", err)
		return
	}
	now := scanner.clock.Now()
	scanner.state.SetLastChecked(strconv.FormatInt(pipeline.ID, 10), now)

	for _, run := range runs[:min(2, len(runs))] {
		attrs := []any{
			"run_number", run.RunNumber,
			"status", run.Status,
			"conclusion", run.Conclusion,
			"branch", run.Branch,
		}
		if !run.UpdatedAt.IsZero() {
			attrs = append(attrs, "age", now.Sub(run.UpdatedAt).Round(time.Second))
		}
		logger.Debug("recent run", attrs...)
	}

	for _, run := range selectFresh(runs, now, scanner.state, scanner.branches, logger) {
		if ctx.Err() != nil {
			return
		}
		scanner.dispatch(ctx, run, logger.With("run_id", run.RunID, "run_number", run.RunNumber, "branch", run.Branch))
	}
}

// dispatch resolves and runs the commands for run and marks it
// executed once any command ran, whatever its outcome, or when none
// were configured. A run whose configured names all failed to resolve is
// left unmarked so that a fixed configuration picks it up while it is
// still fresh.
func (scanner *Scanner) dispatch(ctx context.Context, run RunRecord, logger *slog.Logger) {
	scanner.dispatchMu.Lock()
	defer scanner.dispatchMu.Unlock()

	key := run.Key()
	if scanner.state.IsExecuted(key) {
		return
	}

	resolution := scanner.resolver.Resolve(run.Repository, run.Branch)
	logger.Info("fresh successful run",
		"run_key", key.String(),
		"commit", run.CommitSHA,
		"commands", len(resolution.Definitions),
	)

	record := dedup.Dispatch{RunKey: key.String(), Branch: run.Branch, At: scanner.clock.Now()}
	if resolution.AllSkipped() {
		logger.Warn("no configured command could be resolved, run left unmarked",
			"skipped", resolution.Skipped,
		)
		scanner.record(ctx, record, logger)
		return
	}

	succeeded := 0
	if len(resolution.Definitions) > 0 {
		runContext := action.RunContext{
			Repository:    run.Repository,
			WorkflowName:  run.PipelineName,
			WorkflowID:    run.PipelineID,
			Branch:        run.Branch,
			RunNumber:     run.RunNumber,
			RunID:         run.RunID,
			CommitSHA:     run.CommitSHA,
			CommitMessage: run.CommitTitle,
			CommitAuthor:  scanner.commitAuthor(ctx, run, logger),
		}
		for _, definition := range resolution.Definitions {
			outcome := scanner.runner.Run(ctx, definition, runContext)
			if outcome.Succeeded() {
				succeeded++
			}
			record.Commands = append(record.Commands, dedup.CommandRecord{
				Name:     definition.Name,
				Outcome:  outcome.Kind.String(),
				ExitCode: outcome.ExitCode,
				Duration: outcome.Duration,
			})
		}
	}

	scanner.state.MarkExecuted(key)
	record.Marked = true
	failed := len(resolution.Definitions) - succeeded
	if failed > 0 {
		logger.Warn("run marked executed with failed commands",
			"run_key", key.String(),
			"succeeded", succeeded,
			"failed", failed,
		)
	} else {
		logger.Info("run marked executed",
			"run_key", key.String(),
			"succeeded", succeeded,
		)
	}
	scanner.record(ctx, record, logger)
}

// commitAuthor looks the author up best-effort; failures yield
// "unknown".
func (scanner *Scanner) commitAuthor(ctx context.Context, run RunRecord, logger *slog.Logger) string {
	if run.CommitSHA == "" {
		return "unknown"
	}
	author, err := scanner.source.CommitAuthor(ctx, run.Repository, run.CommitSHA)
	if err != nil || author == "" {
		logger.Debug("commit author unavailable", "commit", run.CommitSHA, "error", err)
		return "unknown"
	}
	return author
}

func (scanner *Scanner) record(ctx context.Context, record dedup.Dispatch, logger *slog.Logger) {
	if scanner.journal == nil {
		return
	}
	if err := scanner.journal.RecordDispatch(context.WithoutCancel(ctx), record); err != nil {
		logger.Warn("recording dispatch failed", "error", err)
	}
}
