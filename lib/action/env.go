// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"strconv"
)

// RunContext describes the workflow run that triggered a command. It
// is exported to the command as environment variables.
type RunContext struct {
	Repository    string
	WorkflowName  string
	WorkflowID    int64
	Branch        string
	RunNumber     int64
	RunID         int64
	CommitSHA     string
	CommitMessage string
	CommitAuthor  string
}

// Variables returns the injected variables in a fixed order. Empty
// text values are replaced by "unknown".
func (runContext RunContext) Variables() [][2]string {
	return [][2]string{
		{"REPO_NAME", orUnknown(runContext.Repository)},
		{"WORKFLOW_NAME", orUnknown(runContext.WorkflowName)},
		{"WORKFLOW_ID", strconv.FormatInt(runContext.WorkflowID, 10)},
		{"BRANCH_NAME", orUnknown(runContext.Branch)},
		{"RUN_NUMBER", strconv.FormatInt(runContext.RunNumber, 10)},
		{"RUN_ID", strconv.FormatInt(runContext.RunID, 10)},
		{"COMMIT_SHA", orUnknown(runContext.CommitSHA)},
		{"COMMIT_MESSAGE", orUnknown(runContext.CommitMessage)},
		{"COMMIT_AUTHOR", orUnknown(runContext.CommitAuthor)},
	}
}

// environ appends the run variables to base, which is usually
// os.Environ(). Later entries win in exec, so these override any
// inherited value of the same name.
func (runContext RunContext) environ(base []string) []string {
	variables := runContext.Variables()
	env := make([]string, 0, len(base)+len(variables))
	env = append(env, base...)
	for _, variable := range variables {
		env = append(env, variable[0]+"="+variable[1])
	}
	return env
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
