// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	validLevels       = []string{"debug", "info", "warn", "warning", "error"}
	validBackends     = []string{"json", "sqlite"}
	validCompressions = []string{"zstd", "lz4", "none"}
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.GitHub.Token == "" {
		add("github.token is required (usually ${GITHUB_TOKEN})")
	}
	if !strings.HasPrefix(c.GitHub.APIBaseURL, "https://") {
		add("github.api_base_url must be an https URL, got %q", c.GitHub.APIBaseURL)
	}
	if c.GitHub.Timeout <= 0 {
		add("github.timeout must be positive")
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		add("github.per_page must be between 1 and 100, got %d", c.GitHub.PerPage)
	}

	if len(c.Repositories) == 0 {
		add("repositories: at least one repository is required")
	}
	for _, repository := range c.Repositories {
		owner, name, found := strings.Cut(repository, "/")
		if !found || owner == "" || name == "" || strings.Contains(name, "/") {
			add("repositories: %q is not in owner/name form", repository)
		}
	}

	if c.Monitoring.PollInterval <= 0 {
		add("monitoring.poll_interval must be positive")
	}
	if c.Monitoring.TimeoutPerRepo <= 0 {
		add("monitoring.timeout_per_repo must be positive")
	}
	if c.Monitoring.EnableParallel && c.Monitoring.MaxParallelWorkers <= 0 {
		add("monitoring.max_parallel_workers must be positive when enable_parallel is set")
	}

	for _, name := range slices.Sorted(maps.Keys(c.Commands.Definitions)) {
		if c.Commands.Definitions[name].Timeout < 0 {
			add("commands.definitions.%s: timeout must not be negative", name)
		}
	}
	for index, entry := range c.Commands.OnSuccess {
		if entry.Inline && entry.Timeout < 0 {
			add("commands.on_success[%d]: timeout must not be negative", index+1)
		}
	}

	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level must be one of %v, got %q", validLevels, c.Logging.Level)
	}
	if !slices.Contains(validCompressions, c.Logging.Rotation.Compression) {
		add("logging.rotation.compression must be one of %v, got %q", validCompressions, c.Logging.Rotation.Compression)
	}
	if c.Logging.Rotation.Keep < 0 {
		add("logging.rotation.keep must not be negative")
	}

	switch c.State.Backend {
	case "json":
		if c.State.StateFile == "" {
			add("state.state_file is required for the json backend")
		}
	case "sqlite":
		if c.State.Database == "" {
			add("state.database is required for the sqlite backend")
		}
	default:
		add("state.backend must be one of %v, got %q", validBackends, c.State.Backend)
	}

	if c.Health.Enabled {
		if c.Health.File == "" {
			add("health.file is required when health is enabled")
		}
		if c.Health.UpdateInterval <= 0 {
			add("health.update_interval must be positive")
		}
	}

	return errors.Join(errs...)
}

// Warnings reports routing problems that do not stop the monitor:
// names with no definition and definitions with an empty command. The
// resolver logs and skips those commands when a run routes to them.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, name := range slices.Sorted(maps.Keys(c.Commands.Definitions)) {
		if strings.TrimSpace(c.Commands.Definitions[name].Command) == "" {
			warnings = append(warnings, fmt.Sprintf("commands.definitions.%s: command is empty", name))
		}
	}
	for _, repository := range slices.Sorted(maps.Keys(c.Commands.ExecutionMap)) {
		branches := c.Commands.ExecutionMap[repository]
		for _, branch := range slices.Sorted(maps.Keys(branches)) {
			for _, name := range branches[branch] {
				if _, ok := c.Commands.Definitions[name]; !ok {
					warnings = append(warnings, fmt.Sprintf("commands.execution_map[%s][%s]: command %q is not defined", repository, branch, name))
				}
			}
		}
	}
	for index, entry := range c.Commands.OnSuccess {
		switch {
		case entry.Inline && strings.TrimSpace(entry.Command) == "":
			warnings = append(warnings, fmt.Sprintf("commands.on_success[%d]: command is empty", index+1))
		case !entry.Inline:
			if _, ok := c.Commands.Definitions[entry.Name]; !ok {
				warnings = append(warnings, fmt.Sprintf("commands.on_success: command %q is not defined", entry.Name))
			}
		}
	}
	if len(c.Commands.ExecutionMap) > 0 && len(c.Commands.OnSuccess) > 0 {
		warnings = append(warnings, "commands.on_success is ignored because commands.execution_map is set")
	}
	return warnings
}
