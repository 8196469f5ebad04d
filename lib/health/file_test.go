// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
)

var epoch = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func readHealth(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading health file: %v", err)
	}
	return string(data)
}

func TestFileReporterUpdateWritesZonedTimestamp(t *testing.T) {
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	path := filepath.Join(t.TempDir(), "run", "health")
	reporter, err := NewFileReporter(FileReporterConfig{
		Path:     path,
		Location: dhaka,
		Clock:    clock.Fake(epoch),
	})
	if err != nil {
		t.Fatalf("NewFileReporter: %v", err)
	}

	if err := reporter.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := readHealth(t, path), "OK - 2026-03-01T12:00:00+06:00\n"; got != want {
		t.Errorf("health file = %q, want %q", got, want)
	}
}

func TestFileReporterRespectsUpdateInterval(t *testing.T) {
	fake := clock.Fake(epoch)
	path := filepath.Join(t.TempDir(), "health")
	reporter, err := NewFileReporter(FileReporterConfig{
		Path:           path,
		UpdateInterval: 5 * time.Minute,
		Clock:          fake,
	})
	if err != nil {
		t.Fatalf("NewFileReporter: %v", err)
	}

	reporter.ObserveCycle(monitor.CycleReport{})
	first := readHealth(t, path)
	if first != "OK - 2026-03-01T06:00:00Z\n" {
		t.Fatalf("first write = %q", first)
	}

	fake.Advance(time.Minute)
	reporter.ObserveCycle(monitor.CycleReport{})
	if got := readHealth(t, path); got != first {
		t.Errorf("rewritten before interval: %q", got)
	}

	fake.Advance(4 * time.Minute)
	reporter.ObserveCycle(monitor.CycleReport{})
	if got := readHealth(t, path); got != "OK - 2026-03-01T06:05:00Z\n" {
		t.Errorf("not rewritten after interval: %q", got)
	}
}

func TestNewFileReporterRequiresPath(t *testing.T) {
	if _, err := NewFileReporter(FileReporterConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
