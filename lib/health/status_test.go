// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/testutil"
)

func get(t *testing.T, handler http.Handler, path string) (int, string) {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(recorder.Result().Body)
	return recorder.Code, string(body)
}

func TestStatusReadiness(t *testing.T) {
	fake := clock.Fake(epoch)
	status := NewStatus(StatusConfig{PollInterval: time.Minute, Clock: fake})
	handler := status.Handler()

	if code, _ := get(t, handler, "/healthz"); code != http.StatusOK {
		t.Errorf("/healthz = %d", code)
	}
	if code, _ := get(t, handler, "/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before any cycle = %d, want 503", code)
	}

	status.ObserveCycle(monitor.CycleReport{ID: "cycle-1", Completed: 2})
	if code, _ := get(t, handler, "/readyz"); code != http.StatusOK {
		t.Errorf("/readyz after a cycle = %d, want 200", code)
	}

	fake.Advance(3 * time.Minute)
	if !status.Ready() {
		t.Error("not ready at exactly three poll intervals")
	}
	fake.Advance(time.Second)
	if code, _ := get(t, handler, "/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz after a stall = %d, want 503", code)
	}
}

func TestStatusReportsLastCycle(t *testing.T) {
	fake := clock.Fake(epoch)
	status := NewStatus(StatusConfig{
		PollInterval: time.Minute,
		Phase:        func() monitor.Phase { return monitor.Sleeping },
		Clock:        fake,
	})
	fake.Advance(90 * time.Second)
	status.ObserveCycle(monitor.CycleReport{ID: "cycle-7", Completed: 3, Failed: 1, Executed: 12})

	code, body := get(t, status.Handler(), "/status")
	if code != http.StatusOK {
		t.Fatalf("/status = %d", code)
	}
	var response struct {
		Phase         string  `json:"phase"`
		Ready         bool    `json:"ready"`
		UptimeSeconds float64 `json:"uptime_seconds"`
		LastCycle     struct {
			ID        string `json:"id"`
			Completed int    `json:"completed"`
			Failed    int    `json:"failed"`
			Executed  int    `json:"executed"`
		} `json:"last_cycle"`
	}
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("decoding %s: %v", body, err)
	}
	if response.Phase != "sleeping" || !response.Ready || response.UptimeSeconds != 90 {
		t.Errorf("unexpected status %+v", response)
	}
	if response.LastCycle.ID != "cycle-7" || response.LastCycle.Completed != 3 ||
		response.LastCycle.Failed != 1 || response.LastCycle.Executed != 12 {
		t.Errorf("unexpected last cycle %+v", response.LastCycle)
	}
}

func TestStatusUnknownRoute(t *testing.T) {
	status := NewStatus(StatusConfig{PollInterval: time.Minute})
	if code, _ := get(t, status.Handler(), "/metrics"); code != http.StatusNotFound {
		t.Errorf("/metrics = %d, want 404", code)
	}
}

func TestServerServesUntilCancelled(t *testing.T) {
	status := NewStatus(StatusConfig{PollInterval: time.Minute})
	server, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Handler: status.Handler()})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server bound")

	response, err := http.Get("http://" + server.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("/healthz = %d", response.StatusCode)
	}

	cancel()
	if err := testutil.RequireReceive[error](t, done, 5*time.Second, "server stopped"); err != nil {
		t.Errorf("Serve: %v", err)
	}
}

func TestNewServerValidates(t *testing.T) {
	if _, err := NewServer(ServerConfig{Handler: http.NotFoundHandler()}); err == nil {
		t.Error("expected error for empty address")
	}
	if _, err := NewServer(ServerConfig{Address: ":0"}); err == nil {
		t.Error("expected error for nil handler")
	}
}
