// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process logger: a console handler (text
// on a terminal, JSON otherwise), an optional JSON file handler backed
// by a daily rotating file, timestamps rendered in a configured zone.
package logging
