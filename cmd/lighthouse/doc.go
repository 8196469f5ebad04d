// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Lighthouse polls GitHub Actions for successful workflow runs and
// runs the shell commands routed to each one exactly once.
//
//	lighthouse --config /etc/lighthouse/config.yaml run
//	lighthouse --local-mode run --once
//	lighthouse check-config
//	lighthouse resolve acme/api main
//	lighthouse state show
//	lighthouse state forget acme/api:1234:987654
//	lighthouse history --limit 50
//
// With no command, lighthouse runs the monitor loop until SIGINT or
// SIGTERM.
package main
