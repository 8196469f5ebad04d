// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/github"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
)

// DefaultPerPage is the number of completed runs fetched per workflow
// per cycle.
const DefaultPerPage = 100

// Config holds the parameters for NewGitHub.
type Config struct {
	Client *github.Client

	// Workflows, when non-empty, limits monitoring to workflows whose
	// name, numeric ID, or file name (e.g. "ci.yml") is listed.
	Workflows []string

	// PerPage bounds how many completed runs one poll looks at.
	// Defaults to DefaultPerPage.
	PerPage int

	Logger *slog.Logger
}

// GitHub is a monitor.RunSource backed by the GitHub Actions API.
type GitHub struct {
	client    *github.Client
	workflows []string
	perPage   int
	logger    *slog.Logger
}

var _ monitor.RunSource = (*GitHub)(nil)

// NewGitHub returns a GitHub source for config.
func NewGitHub(config Config) *GitHub {
	perPage := config.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = DefaultPerPage
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GitHub{
		client:    config.Client,
		workflows: config.Workflows,
		perPage:   perPage,
		logger:    logger,
	}
}

// lowRateLimit is the remaining request budget below which each cycle
// logs a warning.
const lowRateLimit = 500

// ObserveCycle logs the remaining API request budget after each
// cycle. It implements monitor.Observer.
func (source *GitHub) ObserveCycle(report monitor.CycleReport) {
	remaining := source.client.RateLimitRemaining()
	if remaining < 0 {
		return
	}
	if remaining < lowRateLimit {
		source.logger.Warn("github rate limit running low",
			"remaining", remaining,
			"cycle_id", report.ID,
		)
		return
	}
	source.logger.Debug("github rate limit", "remaining", remaining, "cycle_id", report.ID)
}

// ListMonitoredPipelines lists every workflow of repository and applies
// the workflow filter.
func (source *GitHub) ListMonitoredPipelines(ctx context.Context, repository string) ([]monitor.Pipeline, error) {
	iterator, err := source.client.ListWorkflows(repository, 100)
	if err != nil {
		return nil, err
	}
	workflows, err := iterator.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workflows of %s: %w", repository, err)
	}

	var pipelines []monitor.Pipeline
	for _, workflow := range workflows {
		if !source.monitored(workflow) {
			continue
		}
		pipelines = append(pipelines, monitor.Pipeline{
			Repository: repository,
			ID:         workflow.ID,
			Name:       workflow.Name,
			Path:       workflow.Path,
		})
	}
	source.logger.Debug("workflows selected",
		"repository", repository,
		"total", len(workflows),
		"monitored", len(pipelines),
	)
	return pipelines, nil
}

func (source *GitHub) monitored(workflow github.Workflow) bool {
	if len(source.workflows) == 0 {
		return true
	}
	return slices.Contains(source.workflows, workflow.Name) ||
		slices.Contains(source.workflows, strconv.FormatInt(workflow.ID, 10)) ||
		slices.Contains(source.workflows, path.Base(workflow.Path))
}

// ListCompletedRuns returns the first page of completed runs, newest
// first.
func (source *GitHub) ListCompletedRuns(ctx context.Context, pipeline monitor.Pipeline) ([]monitor.RunRecord, error) {
	iterator, err := source.client.ListWorkflowRuns(pipeline.Repository, pipeline.ID, github.WorkflowRunsOptions{
		Status:  "completed",
		PerPage: source.perPage,
	})
	if err != nil {
		return nil, err
	}
	runs, err := iterator.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs of workflow %d in %s: %w", pipeline.ID, pipeline.Repository, err)
	}

	records := make([]monitor.RunRecord, 0, len(runs))
	for _, run := range runs {
		record := runRecord(pipeline.Repository, run)
		record.PipelineID = pipeline.ID
		record.PipelineName = pipeline.Name
		records = append(records, record)
	}
	return records, nil
}

// GetRun fetches one run. A 404 is reported as monitor.ErrRunNotFound.
func (source *GitHub) GetRun(ctx context.Context, repository string, runID int64) (monitor.RunRecord, error) {
	run, err := source.client.GetWorkflowRun(ctx, repository, runID)
	if github.IsNotFound(err) {
		return monitor.RunRecord{}, fmt.Errorf("%w: %w", monitor.ErrRunNotFound, err)
	}
	if err != nil {
		return monitor.RunRecord{}, err
	}
	return runRecord(repository, *run), nil
}

// CommitAuthor returns the GitHub login of the commit author, or the
// git author name when the commit is not linked to an account.
func (source *GitHub) CommitAuthor(ctx context.Context, repository, sha string) (string, error) {
	commit, err := source.client.GetCommit(ctx, repository, sha)
	if err != nil {
		return "", err
	}
	return commit.AuthorLogin(), nil
}

func runRecord(repository string, run github.WorkflowRun) monitor.RunRecord {
	title := run.DisplayTitle
	if title == "" && run.HeadCommit != nil {
		title = run.HeadCommit.Message
	}
	return monitor.RunRecord{
		Repository:   repository,
		PipelineID:   run.WorkflowID,
		PipelineName: run.Name,
		RunID:        run.ID,
		RunNumber:    run.RunNumber,
		Status:       run.Status,
		Conclusion:   run.Conclusion,
		Branch:       run.HeadBranch,
		CommitSHA:    run.HeadSHA,
		CommitTitle:  title,
		UpdatedAt:    run.UpdatedAt,
	}
}
