// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helper used by lighthouse
// binaries before or after structured logging is available.
package process
