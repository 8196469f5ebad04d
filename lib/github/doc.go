// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package github is a small typed client for the parts of the GitHub
// REST API that lighthouse reads: workflows, workflow runs, and
// commits.
//
// The client authenticates with a token, waits out exhausted rate
// limits (X-RateLimit-* headers, one retry after a 403/429), sends
// If-None-Match for URLs it has seen before, and follows RFC 5988
// Link headers for pagination. It refuses non-HTTPS base URLs.
//
// Repositories are addressed as "owner/name".
package github
