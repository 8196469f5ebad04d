// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"slices"
	"testing"
)

func definitionNames(resolution Resolution) []string {
	var names []string
	for _, definition := range resolution.Definitions {
		names = append(names, definition.Name)
	}
	return names
}

func testDefinitions(names ...string) map[string]Definition {
	definitions := make(map[string]Definition, len(names))
	for _, name := range names {
		definitions[name] = Definition{Command: "echo " + name}
	}
	return definitions
}

func TestResolvePrecedence(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions: testDefinitions("A", "B", "C", "D"),
		ExecutionMap: ExecutionMap{
			"acme/api": {"main": {"A"}, "*": {"B"}},
			"*":        {"main": {"C"}, "*": {"D"}},
		},
	})

	tests := []struct {
		repository, branch string
		want               []string
	}{
		{"acme/api", "main", []string{"A"}},
		{"acme/api", "dev", []string{"B"}},
		{"acme/web", "main", []string{"C"}},
		{"acme/web", "dev", []string{"D"}},
	}
	for _, test := range tests {
		resolution := resolver.Resolve(test.repository, test.branch)
		if got := definitionNames(resolution); !slices.Equal(got, test.want) {
			t.Errorf("Resolve(%q, %q) = %v, want %v", test.repository, test.branch, got, test.want)
		}
	}
}

func TestResolveEmptyListFallsThrough(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions: testDefinitions("deploy"),
		ExecutionMap: ExecutionMap{
			"acme/api": {"main": {}},
			"*":        {"*": {"deploy"}},
		},
	})
	if got := definitionNames(resolver.Resolve("acme/api", "main")); !slices.Equal(got, []string{"deploy"}) {
		t.Errorf("Resolve = %v, want [deploy]", got)
	}
}

func TestResolveNoMatch(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions:  testDefinitions("deploy"),
		ExecutionMap: ExecutionMap{"acme/api": {"main": {"deploy"}}},
	})
	resolution := resolver.Resolve("acme/web", "main")
	if len(resolution.Definitions) != 0 || resolution.Requested != 0 || resolution.AllSkipped() {
		t.Errorf("Resolve with no match = %+v, want empty", resolution)
	}
}

func TestResolveSkipsUnknownNames(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions:  testDefinitions("deploy"),
		ExecutionMap: ExecutionMap{"*": {"*": {"missing", "deploy", "also-missing"}}},
	})
	resolution := resolver.Resolve("acme/api", "main")
	if got := definitionNames(resolution); !slices.Equal(got, []string{"deploy"}) {
		t.Errorf("definitions = %v, want [deploy]", got)
	}
	if resolution.Requested != 3 {
		t.Errorf("Requested = %d, want 3", resolution.Requested)
	}
	if !slices.Equal(resolution.Skipped, []string{"missing", "also-missing"}) {
		t.Errorf("Skipped = %v", resolution.Skipped)
	}
	if resolution.AllSkipped() {
		t.Error("AllSkipped with one resolved definition")
	}
}

func TestResolveAllSkipped(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions: map[string]Definition{"blank": {}},
		ExecutionMap: ExecutionMap{
			"acme/api": {"main": {"missing", "blank"}},
		},
	})
	resolution := resolver.Resolve("acme/api", "main")
	if !resolution.AllSkipped() {
		t.Errorf("AllSkipped() = false for %+v", resolution)
	}
}

func TestResolveLegacyOnSuccess(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions: testDefinitions("notify"),
		OnSuccess:   []string{"notify"},
	})
	if got := definitionNames(resolver.Resolve("acme/api", "feature/x")); !slices.Equal(got, []string{"notify"}) {
		t.Errorf("Resolve = %v, want [notify]", got)
	}

	withMap := NewResolver(ResolverConfig{
		Definitions:  testDefinitions("notify", "deploy"),
		ExecutionMap: ExecutionMap{"acme/api": {"main": {"deploy"}}},
		OnSuccess:    []string{"notify"},
	})
	if got := definitionNames(withMap.Resolve("acme/web", "main")); len(got) != 0 {
		t.Errorf("on_success used alongside an execution map: %v", got)
	}
}

func TestResolveEmptyBranchIsUnknown(t *testing.T) {
	resolver := NewResolver(ResolverConfig{
		Definitions:  testDefinitions("orphan", "fallback"),
		ExecutionMap: ExecutionMap{"acme/api": {"unknown": {"orphan"}, "*": {"fallback"}}},
	})
	if got := definitionNames(resolver.Resolve("acme/api", "")); !slices.Equal(got, []string{"orphan"}) {
		t.Errorf("Resolve with empty branch = %v, want [orphan]", got)
	}
}
