// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"time"
)

// OutcomeKind classifies how a command ended.
type OutcomeKind int

const (
	// Success means the command exited 0.
	Success OutcomeKind = iota

	// NonZeroExit means the command ran and exited with a non-zero
	// status, held in Outcome.ExitCode.
	NonZeroExit

	// TimedOut means the command exceeded its timeout and was
	// terminated. Output captured before termination is kept.
	TimedOut

	// PermissionDenied means the working directory or the shell could
	// not be accessed.
	PermissionDenied

	// NotFound means the working directory or the shell does not exist.
	NotFound

	// Unexpected covers every other failure to run the command,
	// including termination by a signal the runner did not send.
	Unexpected
)

var outcomeKindNames = [...]string{
	Success:          "success",
	NonZeroExit:      "non_zero_exit",
	TimedOut:         "timed_out",
	PermissionDenied: "permission_denied",
	NotFound:         "not_found",
	Unexpected:       "unexpected",
}

func (kind OutcomeKind) String() string {
	if kind < 0 || int(kind) >= len(outcomeKindNames) {
		return fmt.Sprintf("OutcomeKind(%d)", int(kind))
	}
	return outcomeKindNames[kind]
}

// Outcome is the result of running one Definition. Run always
// produces one; failures are described here rather than returned as
// errors.
type Outcome struct {
	Kind    OutcomeKind
	Command string

	// ExitCode is meaningful only when Kind is NonZeroExit.
	ExitCode int

	Stdout   string
	Stderr   string
	Duration time.Duration

	// Err is the underlying error for the failure kinds other than
	// NonZeroExit.
	Err error
}

// Succeeded reports whether Kind is Success.
func (outcome Outcome) Succeeded() bool {
	return outcome.Kind == Success
}
