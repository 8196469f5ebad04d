// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/action"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

type scannerFixture struct {
	source  *fakeSource
	runner  *fakeRunner
	state   *dedup.State
	journal *memoryJournal
	scanner *Scanner
}

func newScannerFixture(resolver action.ResolverConfig) *scannerFixture {
	fixture := &scannerFixture{
		source:  newFakeSource(),
		runner:  &fakeRunner{},
		state:   dedup.NewState(),
		journal: &memoryJournal{},
	}
	fixture.scanner = NewScanner(ScannerConfig{
		Source:   fixture.source,
		State:    fixture.state,
		Resolver: action.NewResolver(resolver),
		Runner:   fixture.runner,
		Journal:  fixture.journal,
		Clock:    clock.Fake(testNow),
	})
	return fixture
}

func deployConfig() action.ResolverConfig {
	return action.ResolverConfig{
		Definitions: map[string]action.Definition{
			"deploy": {Command: "./deploy.sh"},
			"notify": {Command: "curl -X POST https://hooks.example.com"},
		},
		ExecutionMap: action.ExecutionMap{
			"acme/api": {"main": {"deploy"}},
		},
	}
}

func TestScannerDeploysFreshRun(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	run := successfulRun("acme/api", 1234, 987654, "main", testNow.Add(-30*time.Second))
	fixture.source.addRun(run)
	fixture.source.authors[run.CommitSHA] = "octocat"

	if !fixture.scanner.ScanRepository(context.Background(), "acme/api") {
		t.Fatal("ScanRepository returned false")
	}

	if got := fixture.runner.commands(); !slices.Equal(got, []string{"deploy"}) {
		t.Fatalf("commands = %v, want [deploy]", got)
	}
	runContext := fixture.runner.calls[0].runContext
	if runContext.Repository != "acme/api" || runContext.RunID != 987654 || runContext.WorkflowID != 1234 {
		t.Errorf("run context = %+v", runContext)
	}
	if runContext.CommitAuthor != "octocat" || runContext.CommitMessage != "Fix login" {
		t.Errorf("commit details = %q / %q", runContext.CommitAuthor, runContext.CommitMessage)
	}
	if !fixture.state.Contains("acme/api:1234:987654") {
		t.Error("run not marked executed")
	}
	if _, ok := fixture.state.LastChecked()["1234"]; !ok {
		t.Error("last checked not recorded for pipeline")
	}

	if len(fixture.journal.dispatches) != 1 {
		t.Fatalf("journal has %d dispatches, want 1", len(fixture.journal.dispatches))
	}
	dispatch := fixture.journal.dispatches[0]
	if !dispatch.Marked || len(dispatch.Commands) != 1 || dispatch.Commands[0].Outcome != "success" {
		t.Errorf("journal entry = %+v", dispatch)
	}
}

func TestScannerAtMostOnce(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	fixture.source.addRun(successfulRun("acme/api", 1234, 1, "main", testNow))

	for range 3 {
		fixture.scanner.ScanRepository(context.Background(), "acme/api")
	}
	if got := fixture.runner.commands(); len(got) != 1 {
		t.Errorf("commands ran %d times across scans, want 1", len(got))
	}
}

func TestScannerConcurrentScansDispatchOnce(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	fixture.source.addRun(successfulRun("acme/api", 1234, 1, "main", testNow))

	done := make(chan struct{})
	for range 4 {
		go func() {
			fixture.scanner.ScanRepository(context.Background(), "acme/api")
			done <- struct{}{}
		}()
	}
	for range 4 {
		<-done
	}
	if got := fixture.runner.commands(); len(got) != 1 {
		t.Errorf("commands ran %d times across concurrent scans, want 1", len(got))
	}
}

func TestScannerUnknownAuthor(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	fixture.source.addRun(successfulRun("acme/api", 1234, 1, "main", testNow))

	fixture.scanner.ScanRepository(context.Background(), "acme/api")
	if got := fixture.runner.calls[0].runContext.CommitAuthor; got != "unknown" {
		t.Errorf("CommitAuthor = %q, want unknown", got)
	}
}

func TestScannerZeroCommandsMarks(t *testing.T) {
	fixture := newScannerFixture(action.ResolverConfig{})
	run := successfulRun("acme/api", 1, 5, "main", testNow)
	fixture.source.addRun(run)

	fixture.scanner.ScanRepository(context.Background(), "acme/api")
	if len(fixture.runner.commands()) != 0 {
		t.Errorf("commands ran with nothing configured: %v", fixture.runner.commands())
	}
	if !fixture.state.IsExecuted(run.Key()) {
		t.Error("run with zero configured commands not marked")
	}
}

func TestScannerAllSkippedNotMarked(t *testing.T) {
	fixture := newScannerFixture(action.ResolverConfig{
		ExecutionMap: action.ExecutionMap{"*": {"*": {"missing"}}},
	})
	run := successfulRun("acme/api", 1, 5, "main", testNow)
	fixture.source.addRun(run)

	fixture.scanner.ScanRepository(context.Background(), "acme/api")
	if fixture.state.IsExecuted(run.Key()) {
		t.Error("run whose commands were all skipped was marked")
	}
	if len(fixture.journal.dispatches) != 1 || fixture.journal.dispatches[0].Marked {
		t.Errorf("journal = %+v, want one unmarked entry", fixture.journal.dispatches)
	}
}

func TestScannerMarksWhenAnyCommandSucceeds(t *testing.T) {
	config := deployConfig()
	config.ExecutionMap["acme/api"]["main"] = []string{"deploy", "notify"}
	fixture := newScannerFixture(config)
	fixture.runner.outcomes = map[string]action.OutcomeKind{"deploy": action.NonZeroExit}
	run := successfulRun("acme/api", 1, 5, "main", testNow)
	fixture.source.addRun(run)

	fixture.scanner.ScanRepository(context.Background(), "acme/api")
	if got := fixture.runner.commands(); !slices.Equal(got, []string{"deploy", "notify"}) {
		t.Errorf("commands = %v, want both to run after a failure", got)
	}
	if !fixture.state.IsExecuted(run.Key()) {
		t.Error("run not marked although notify succeeded")
	}
}

func TestScannerMarksWhenEveryCommandFailed(t *testing.T) {
	for _, kind := range []action.OutcomeKind{action.NonZeroExit, action.TimedOut, action.PermissionDenied} {
		t.Run(kind.String(), func(t *testing.T) {
			fixture := newScannerFixture(deployConfig())
			fixture.runner.outcomes = map[string]action.OutcomeKind{"deploy": kind}
			run := successfulRun("acme/api", 1, 5, "main", testNow)
			fixture.source.addRun(run)

			fixture.scanner.ScanRepository(context.Background(), "acme/api")
			if !fixture.state.IsExecuted(run.Key()) {
				t.Fatal("run left unmarked after its command ran")
			}

			fixture.scanner.ScanRepository(context.Background(), "acme/api")
			if got := fixture.runner.commands(); !slices.Equal(got, []string{"deploy"}) {
				t.Errorf("commands = %v, want a single deploy across two scans", got)
			}
		})
	}
}

func TestScannerListFailure(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	fixture.source.listErr["acme/api"] = errors.New("502 bad gateway")

	if fixture.scanner.ScanRepository(context.Background(), "acme/api") {
		t.Error("ScanRepository returned true when workflows could not be listed")
	}
}

func TestScannerStopsOnCancellation(t *testing.T) {
	fixture := newScannerFixture(deployConfig())
	fixture.source.addRun(successfulRun("acme/api", 1234, 1, "main", testNow))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fixture.scanner.ScanRepository(ctx, "acme/api")
	if got := fixture.runner.commands(); len(got) != 0 {
		t.Errorf("commands ran after cancellation: %v", got)
	}
}
