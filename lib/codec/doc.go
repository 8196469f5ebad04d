// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR encoding used for binary records at rest,
// currently the per-dispatch command outcomes kept in the sqlite
// history table. Struct fields carry `cbor:"name"` tags.
package codec
