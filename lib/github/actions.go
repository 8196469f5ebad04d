// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// WorkflowRunsOptions filters ListWorkflowRuns.
type WorkflowRunsOptions struct {
	// Status is "completed", "success", "in_progress", ... Empty
	// returns runs of every status.
	Status string

	// Branch restricts runs to one head branch.
	Branch string

	// PerPage is the page size, 1–100. Zero uses the API default (30).
	PerPage int
}

func (options WorkflowRunsOptions) query() string {
	values := url.Values{}
	if options.Status != "" {
		values.Set("status", options.Status)
	}
	if options.Branch != "" {
		values.Set("branch", options.Branch)
	}
	if options.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(options.PerPage))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListWorkflows lists the workflows of repository ("owner/name").
func (client *Client) ListWorkflows(repository string, perPage int) (*PageIterator[Workflow], error) {
	owner, name, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/repos/%s/%s/actions/workflows", owner, name)
	if perPage > 0 {
		path += "?per_page=" + strconv.Itoa(perPage)
	}
	return list[Workflow](client, path, "workflows"), nil
}

// ListWorkflowRuns lists runs of one workflow, newest first.
func (client *Client) ListWorkflowRuns(repository string, workflowID int64, options WorkflowRunsOptions) (*PageIterator[WorkflowRun], error) {
	owner, name, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/repos/%s/%s/actions/workflows/%d/runs%s", owner, name, workflowID, options.query())
	return list[WorkflowRun](client, path, "workflow_runs"), nil
}

// GetWorkflowRun retrieves a single workflow run by ID.
func (client *Client) GetWorkflowRun(ctx context.Context, repository string, runID int64) (*WorkflowRun, error) {
	owner, name, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	var run WorkflowRun
	path := fmt.Sprintf("/repos/%s/%s/actions/runs/%d", owner, name, runID)
	if err := client.get(ctx, path, &run); err != nil {
		return nil, fmt.Errorf("getting workflow run %d in %s: %w", runID, repository, err)
	}
	return &run, nil
}
