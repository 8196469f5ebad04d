// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"log/slog"
)

// Wildcard matches any repository or any branch in an ExecutionMap.
const Wildcard = "*"

// unknownBranch stands in for a run with no head branch.
const unknownBranch = "unknown"

// ExecutionMap routes runs to command names: repository, then branch,
// then the ordered list of definition names to run.
type ExecutionMap map[string]map[string][]string

// lookup returns the list for the first non-empty match in precedence
// order: exact repository and branch, exact repository with any
// branch, any repository with the exact branch, then any/any.
func (executionMap ExecutionMap) lookup(repository, branch string) []string {
	candidates := [][2]string{
		{repository, branch},
		{repository, Wildcard},
		{Wildcard, branch},
		{Wildcard, Wildcard},
	}
	for _, candidate := range candidates {
		branches, ok := executionMap[candidate[0]]
		if !ok {
			continue
		}
		if names := branches[candidate[1]]; len(names) > 0 {
			return names
		}
	}
	return nil
}

// Resolution is the outcome of resolving a repository and branch.
type Resolution struct {
	// Definitions are the commands to run, in order.
	Definitions []Definition

	// Requested is how many names the matching rule listed.
	Requested int

	// Skipped are requested names with no definition.
	Skipped []string
}

// AllSkipped reports whether names were requested but none resolved.
// Callers use this to tell "nothing configured" from "nothing usable".
func (resolution Resolution) AllSkipped() bool {
	return resolution.Requested > 0 && len(resolution.Definitions) == 0
}

// ResolverConfig holds the parameters for NewResolver.
type ResolverConfig struct {
	Definitions  map[string]Definition
	ExecutionMap ExecutionMap

	// OnSuccess is the deprecated flat list, consulted only when
	// ExecutionMap is empty.
	OnSuccess []string

	Logger *slog.Logger
}

// Resolver maps a repository and branch to command definitions.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	definitions  map[string]Definition
	executionMap ExecutionMap
	onSuccess    []string
	logger       *slog.Logger
}

// NewResolver returns a Resolver over config.
func NewResolver(config ResolverConfig) *Resolver {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		definitions:  config.Definitions,
		executionMap: config.ExecutionMap,
		onSuccess:    config.OnSuccess,
		logger:       logger,
	}
}

// Resolve returns the commands configured for repository and branch.
// No match is an empty Resolution, not an error. Names without a
// definition, or whose definition has no command, are logged and
// skipped.
func (resolver *Resolver) Resolve(repository, branch string) Resolution {
	if branch == "" {
		branch = unknownBranch
	}

	var names []string
	if len(resolver.executionMap) > 0 {
		names = resolver.executionMap.lookup(repository, branch)
	} else {
		names = resolver.onSuccess
	}

	resolution := Resolution{Requested: len(names)}
	for _, name := range names {
		definition, ok := resolver.definitions[name]
		if !ok {
			resolver.logger.Warn("command not defined, skipping",
				"command", name,
				"repository", repository,
				"branch", branch,
			)
			resolution.Skipped = append(resolution.Skipped, name)
			continue
		}
		if definition.Command == "" {
			resolver.logger.Warn("command definition is empty, skipping",
				"command", name,
				"repository", repository,
			)
			resolution.Skipped = append(resolution.Skipped, name)
			continue
		}
		if definition.Name == "" {
			definition.Name = name
		}
		resolution.Definitions = append(resolution.Definitions, definition)
	}
	return resolution
}
