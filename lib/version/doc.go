// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build information injected with -ldflags:
//
//	go build -ldflags "-X github.com/aburaihan-dev/github-actions-lighthouse/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/lighthouse
//
// Unset values default to "unknown" and "0.1.0-dev".
package version
