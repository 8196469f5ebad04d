// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response body reads so a misbehaving API
// endpoint cannot exhaust memory.
package netutil

import (
	"fmt"
	"io"
)

// MaxResponseSize caps JSON API response bodies at 32 MB. A page of
// 100 workflow runs is well under 1 MB.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads body up to MaxResponseSize bytes. It reports an
// error when the body is larger than the cap instead of silently
// truncating it.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}
