// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newApp(ctx, os.Stdout, os.Stderr).root().Execute(os.Args[1:])
}
