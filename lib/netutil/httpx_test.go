// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	data, err := ReadResponse(strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %q", data)
	}
}

func TestReadResponseRejectsOversizedBody(t *testing.T) {
	oversized := bytes.NewReader(make([]byte, MaxResponseSize+1))
	if _, err := ReadResponse(oversized); err == nil {
		t.Fatal("expected error for body larger than MaxResponseSize")
	}
}
