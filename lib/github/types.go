// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "time"

// User is a GitHub account reference.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Workflow is a GitHub Actions workflow definition.
type Workflow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`  // ".github/workflows/ci.yml"
	State string `json:"state"` // "active", "disabled_manually", ...
}

// WorkflowRun is one execution of a workflow.
type WorkflowRun struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	WorkflowID   int64       `json:"workflow_id"`
	RunNumber    int64       `json:"run_number"`
	Status       string      `json:"status"`     // "queued", "in_progress", "completed"
	Conclusion   string      `json:"conclusion"` // "success", "failure", "cancelled", ""
	Event        string      `json:"event"`
	HeadSHA      string      `json:"head_sha"`
	HeadBranch   string      `json:"head_branch"`
	DisplayTitle string      `json:"display_title"`
	HTMLURL      string      `json:"html_url"`
	HeadCommit   *HeadCommit `json:"head_commit"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HeadCommit is the commit summary embedded in a workflow run.
type HeadCommit struct {
	ID      string       `json:"id"`
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// RepositoryCommit is the response of the commits endpoint. Author is
// nil when the commit email is not linked to a GitHub account.
type RepositoryCommit struct {
	SHA     string    `json:"sha"`
	Commit  GitCommit `json:"commit"`
	Author  *User     `json:"author"`
	HTMLURL string    `json:"html_url"`
}

// GitCommit is the git-level commit data.
type GitCommit struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// CommitAuthor is git author metadata.
type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}
