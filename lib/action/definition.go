// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"strings"
	"time"
)

// Definition is a named shell action.
type Definition struct {
	// Name is the key the definition is registered under and the name
	// execution maps refer to.
	Name string

	// Command is passed to "sh -c".
	Command string

	// WorkingDirectory is where the command runs. Empty means the
	// process working directory.
	WorkingDirectory string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration

	// Description is free text shown in logs.
	Description string
}

// EffectiveTimeout returns Timeout, or the default derived from the
// command text when no override is set.
func (definition Definition) EffectiveTimeout() time.Duration {
	if definition.Timeout > 0 {
		return definition.Timeout
	}
	return DefaultTimeout(definition.Command)
}

// label is the human-readable name used in log lines.
func (definition Definition) label() string {
	if definition.Description != "" {
		return definition.Description
	}
	return definition.Name
}

// timeoutRules map substrings of the lowercased command to a default
// timeout. The first rule with a matching keyword wins.
var timeoutRules = []struct {
	keywords []string
	timeout  time.Duration
}{
	{[]string{"curl", "wget", "http"}, 60 * time.Second},
	{[]string{"kubectl"}, 120 * time.Second},
	{[]string{"git", "clone", "pull", "push"}, 180 * time.Second},
	{[]string{"docker", "podman"}, 300 * time.Second},
}

// FallbackTimeout applies to commands no rule recognises.
const FallbackTimeout = 120 * time.Second

// DefaultTimeout picks a timeout from the kind of work the command
// text suggests: HTTP calls are short, container operations long.
func DefaultTimeout(command string) time.Duration {
	lowered := strings.ToLower(command)
	for _, rule := range timeoutRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.timeout
			}
		}
	}
	return FallbackTimeout
}
