// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package action resolves which shell commands a workflow run should
// trigger and runs them.
//
// A [Resolver] looks a repository and branch up in an [ExecutionMap]
// and returns the matching [Definition] values. A [Runner] executes
// each one under a timeout and reports an [Outcome] whose
// [OutcomeKind] says how it ended. Failures are classified from OS
// error kinds and exit statuses, never from command output.
package action
