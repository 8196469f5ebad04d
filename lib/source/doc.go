// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package source adapts the GitHub Actions API to the monitor's
// RunSource interface.
package source
