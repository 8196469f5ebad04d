// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/atomicfile"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
)

// DefaultUpdateInterval is the minimum time between health file writes.
const DefaultUpdateInterval = 5 * time.Minute

// FileReporterConfig holds the parameters for NewFileReporter.
type FileReporterConfig struct {
	Path string

	// UpdateInterval defaults to DefaultUpdateInterval.
	UpdateInterval time.Duration

	// Location is the zone the timestamp is written in. Defaults to UTC.
	Location *time.Location

	Clock  clock.Clock
	Logger *slog.Logger
}

// FileReporter writes "OK - <RFC3339 time>\n" to a file. It implements
// monitor.Observer.
type FileReporter struct {
	path     string
	interval time.Duration
	location *time.Location
	clock    clock.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	lastWrite time.Time
}

// NewFileReporter returns a FileReporter. Nothing is written until
// Update or ObserveCycle is called.
func NewFileReporter(config FileReporterConfig) (*FileReporter, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("health: file path is required")
	}
	interval := config.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	location := config.Location
	if location == nil {
		location = time.UTC
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileReporter{
		path:     config.Path,
		interval: interval,
		location: location,
		clock:    clk,
		logger:   logger,
	}, nil
}

// Update writes the health file now.
func (reporter *FileReporter) Update() error {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	return reporter.writeLocked(reporter.clock.Now())
}

// ObserveCycle rewrites the health file when the update interval has
// passed since the last write.
func (reporter *FileReporter) ObserveCycle(monitor.CycleReport) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()

	now := reporter.clock.Now()
	if !reporter.lastWrite.IsZero() && now.Sub(reporter.lastWrite) < reporter.interval {
		return
	}
	if err := reporter.writeLocked(now); err != nil {
		reporter.logger.Warn("updating health file failed", "path", reporter.path, "error", err)
	}
}

func (reporter *FileReporter) writeLocked(now time.Time) error {
	contents := fmt.Sprintf("OK - %s\n", now.In(reporter.location).Format(time.RFC3339))
	if err := atomicfile.WriteFile(reporter.path, []byte(contents), 0644); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	reporter.lastWrite = now
	reporter.logger.Debug("health file updated", "path", reporter.path)
	return nil
}
