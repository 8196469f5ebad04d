// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is an error that selects the process exit status. Commands
// return one after they have already reported the failure themselves.
type ExitCoder interface {
	error
	ExitCode() int
}

// Exit ends the process for the error returned by main's run function.
// nil exits 0. An ExitCoder anywhere in the chain exits with its code
// silently; anything else is printed to stderr and exits 1.
func Exit(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes the message for err to w and returns the exit status.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
