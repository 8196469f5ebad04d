// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

const (
	DefaultPollInterval       = 60 * time.Second
	DefaultMaxParallelWorkers = 3
	DefaultTimeoutPerRepo     = 60 * time.Second
)

// Phase is where the cycle loop currently is.
type Phase int32

const (
	Idle Phase = iota
	Scanning
	Persisting
	Sleeping
	Stopped
)

func (phase Phase) String() string {
	switch phase {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Persisting:
		return "persisting"
	case Sleeping:
		return "sleeping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CycleReport summarises one completed cycle.
type CycleReport struct {
	ID        string        `json:"id"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`

	// Executed is the size of the executed set after the cycle.
	Executed int `json:"executed"`

	// Pruned is set when a retention pass ran during the cycle.
	Pruned *PruneReport `json:"pruned,omitempty"`
}

// Observer is told about every completed cycle.
type Observer interface {
	ObserveCycle(report CycleReport)
}

// Config holds the parameters for New.
type Config struct {
	Repositories []string

	// PollInterval is the sleep between cycles. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration

	// EnableParallel scans repositories concurrently with up to
	// MaxParallelWorkers workers when there is more than one.
	EnableParallel     bool
	MaxParallelWorkers int

	// TimeoutPerRepo bounds a single repository scan. Defaults to
	// DefaultTimeoutPerRepo.
	TimeoutPerRepo time.Duration

	Scanner *Scanner
	Source  RunSource
	State   *dedup.State
	Store   dedup.Store

	Observers []Observer

	Clock  clock.Clock
	Logger *slog.Logger
}

// Monitor runs the poll cycle: scan every repository, persist state,
// sleep, repeat.
type Monitor struct {
	repositories   []string
	pollInterval   time.Duration
	poolSize       int
	timeoutPerRepo time.Duration
	scanner        *Scanner
	source         RunSource
	state          *dedup.State
	store          dedup.Store
	observers      []Observer
	clock          clock.Clock
	logger         *slog.Logger

	phase atomic.Int32

	// retentionMu guards lastRetention.
	retentionMu   sync.Mutex
	lastRetention time.Time
}

// New validates config and returns a Monitor.
func New(config Config) (*Monitor, error) {
	if len(config.Repositories) == 0 {
		return nil, errors.New("monitor: no repositories configured")
	}
	if config.Scanner == nil || config.Source == nil || config.State == nil || config.Store == nil {
		return nil, errors.New("monitor: Scanner, Source, State and Store are required")
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	timeoutPerRepo := config.TimeoutPerRepo
	if timeoutPerRepo <= 0 {
		timeoutPerRepo = DefaultTimeoutPerRepo
	}
	poolSize := 1
	if config.EnableParallel && len(config.Repositories) > 1 {
		poolSize = config.MaxParallelWorkers
		if poolSize <= 0 {
			poolSize = DefaultMaxParallelWorkers
		}
		poolSize = min(poolSize, len(config.Repositories))
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Monitor{
		repositories:   config.Repositories,
		pollInterval:   pollInterval,
		poolSize:       poolSize,
		timeoutPerRepo: timeoutPerRepo,
		scanner:        config.Scanner,
		source:         config.Source,
		state:          config.State,
		store:          config.Store,
		observers:      config.Observers,
		clock:          clk,
		logger:         logger,
	}, nil
}

// PoolSize returns the number of concurrent repository scans. One
// means repositories are scanned sequentially.
func (monitor *Monitor) PoolSize() int { return monitor.poolSize }

// Phase returns the current loop phase.
func (monitor *Monitor) Phase() Phase { return Phase(monitor.phase.Load()) }

// Run executes cycles until ctx is cancelled. It returns nil on
// shutdown.
func (monitor *Monitor) Run(ctx context.Context) error {
	defer monitor.phase.Store(int32(Stopped))

	monitor.logger.Info("monitor started",
		"repositories", len(monitor.repositories),
		"poll_interval", monitor.pollInterval,
		"pool_size", monitor.poolSize,
		"timeout_per_repo", monitor.timeoutPerRepo,
	)
	for {
		monitor.RunCycle(ctx)
		if !monitor.sleep(ctx) {
			monitor.logger.Info("monitor stopped")
			return nil
		}
	}
}

// RunCycle scans every repository once, runs retention when due, and
// saves state. It always returns a report, even when ctx is cancelled
// part way through.
func (monitor *Monitor) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{ID: uuid.NewString(), Started: monitor.clock.Now()}
	logger := monitor.logger.With("cycle_id", report.ID)
	logger.Info("cycle started", "repositories", len(monitor.repositories))

	monitor.phase.Store(int32(Scanning))
	report.Completed, report.Failed = monitor.scanRepositories(ctx, logger)

	if ctx.Err() == nil && monitor.retentionDue() {
		pruned := Prune(ctx, monitor.source, monitor.state, monitor.clock.Now(), logger)
		report.Pruned = &pruned
		logger.Info("retention pass finished",
			"checked", pruned.Checked,
			"evicted", pruned.Evicted,
			"retained", pruned.Retained,
			"errors", pruned.Errors,
		)
	}

	monitor.phase.Store(int32(Persisting))
	// Saved even during shutdown so that marks from this cycle survive.
	if err := monitor.store.Save(context.WithoutCancel(ctx), monitor.state); err != nil {
		logger.Error("saving state failed, continuing with in-memory state", "error", err)
	}

	report.Executed = monitor.state.Len()
	report.Duration = monitor.clock.Now().Sub(report.Started)
	logger.Info("cycle finished",
		"completed", report.Completed,
		"failed", report.Failed,
		"executed_runs", report.Executed,
		"duration", report.Duration,
		"next_check", monitor.clock.Now().Add(monitor.pollInterval),
	)

	for _, observer := range monitor.observers {
		observer.ObserveCycle(report)
	}
	monitor.phase.Store(int32(Idle))
	return report
}

// retentionDue reports whether an hour has passed since the last
// retention pass, and records now as the last pass when it has. The
// first call is always due.
func (monitor *Monitor) retentionDue() bool {
	monitor.retentionMu.Lock()
	defer monitor.retentionMu.Unlock()
	now := monitor.clock.Now()
	if !monitor.lastRetention.IsZero() && now.Sub(monitor.lastRetention) < RetentionInterval {
		return false
	}
	monitor.lastRetention = now
	return true
}

type scanResult struct {
	repository string
	ok         bool
}

// scanRepositories fans the repositories out over the worker pool and
// waits for them. The wait is bounded by twice the per-repository
// timeout; repositories still pending when it expires count as failed.
func (monitor *Monitor) scanRepositories(ctx context.Context, logger *slog.Logger) (completed, failed int) {
	total := len(monitor.repositories)
	waitCtx, cancel := context.WithTimeout(ctx, 2*monitor.timeoutPerRepo)
	defer cancel()

	jobs := make(chan string)
	results := make(chan scanResult, total)
	for range monitor.poolSize {
		go func() {
			for repository := range jobs {
				results <- scanResult{repository, monitor.scanOne(ctx, repository, logger)}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, repository := range monitor.repositories {
			select {
			case jobs <- repository:
			case <-waitCtx.Done():
				return
			}
		}
	}()

	for received := 0; received < total; received++ {
		select {
		case result := <-results:
			if result.ok {
				completed++
			} else {
				failed++
			}
		case <-waitCtx.Done():
			pending := total - received
			logger.Warn("stopped waiting for repository scans", "pending", pending, "error", waitCtx.Err())
			return completed, failed + pending
		}
	}
	return completed, failed
}

// scanOne runs one repository scan under the per-repository timeout.
// A scan that overruns is reported as failed; it keeps running in the
// background until its context expires.
func (monitor *Monitor) scanOne(ctx context.Context, repository string, logger *slog.Logger) bool {
	repoCtx, cancel := context.WithTimeout(ctx, monitor.timeoutPerRepo)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		done <- monitor.scanner.ScanRepository(repoCtx, repository)
	}()
	select {
	case ok := <-done:
		return ok
	case <-repoCtx.Done():
		logger.Warn("repository scan timed out", "repository", repository, "timeout", monitor.timeoutPerRepo)
		return false
	}
}

// sleep waits the poll interval in one-second steps. It returns false
// as soon as ctx is cancelled.
func (monitor *Monitor) sleep(ctx context.Context) bool {
	monitor.phase.Store(int32(Sleeping))
	for remaining := monitor.pollInterval; remaining > 0; remaining -= time.Second {
		select {
		case <-ctx.Done():
			return false
		case <-monitor.clock.After(min(time.Second, remaining)):
		}
	}
	return ctx.Err() == nil
}
