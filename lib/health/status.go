// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/version"
)

// readinessFactor is how many poll intervals may pass after the last
// finished cycle before /readyz fails.
const readinessFactor = 3

// StatusConfig holds the parameters for NewStatus.
type StatusConfig struct {
	// PollInterval is the monitor's sleep between cycles.
	PollInterval time.Duration

	// Phase reports the loop phase for /status. Optional.
	Phase func() monitor.Phase

	Clock clock.Clock
}

// Status tracks the most recent cycle and serves it over HTTP. It
// implements monitor.Observer.
type Status struct {
	pollInterval time.Duration
	phase        func() monitor.Phase
	clock        clock.Clock
	startedAt    time.Time

	mu         sync.Mutex
	last       *monitor.CycleReport
	finishedAt time.Time
}

// NewStatus returns a Status with no cycles observed.
func NewStatus(config StatusConfig) *Status {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Status{
		pollInterval: config.PollInterval,
		phase:        config.Phase,
		clock:        clk,
		startedAt:    clk.Now(),
	}
}

// ObserveCycle records report as the latest cycle.
func (status *Status) ObserveCycle(report monitor.CycleReport) {
	status.mu.Lock()
	defer status.mu.Unlock()
	status.last = &report
	status.finishedAt = status.clock.Now()
}

// Ready reports whether a cycle finished within three poll intervals.
func (status *Status) Ready() bool {
	status.mu.Lock()
	defer status.mu.Unlock()
	return status.readyLocked()
}

func (status *Status) readyLocked() bool {
	if status.last == nil {
		return false
	}
	return status.clock.Now().Sub(status.finishedAt) <= readinessFactor*status.pollInterval
}

type statusResponse struct {
	Version       string               `json:"version"`
	Phase         string               `json:"phase,omitempty"`
	Ready         bool                 `json:"ready"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	LastCycle     *monitor.CycleReport `json:"last_cycle"`
	LastFinished  *time.Time           `json:"last_finished,omitempty"`
}

func (status *Status) snapshot() statusResponse {
	status.mu.Lock()
	defer status.mu.Unlock()

	response := statusResponse{
		Version:       version.Short(),
		Ready:         status.readyLocked(),
		UptimeSeconds: status.clock.Now().Sub(status.startedAt).Seconds(),
	}
	if status.phase != nil {
		response.Phase = status.phase().String()
	}
	if status.last != nil {
		last := *status.last
		finished := status.finishedAt
		response.LastCycle = &last
		response.LastFinished = &finished
	}
	return response
}

// Handler returns the router for /healthz, /readyz and /status.
func (status *Status) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !status.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no recent cycle\n"))
			return
		}
		w.Write([]byte("ready\n"))
	})
	router.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status.snapshot())
	})
	return router
}
