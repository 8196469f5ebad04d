// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete lighthouse configuration.
type Config struct {
	GitHub       GitHubConfig     `yaml:"github"`
	Repositories []string         `yaml:"repositories"`
	Monitoring   MonitoringConfig `yaml:"monitoring"`
	Commands     CommandsConfig   `yaml:"commands"`
	Logging      LoggingConfig    `yaml:"logging"`
	State        StateConfig      `yaml:"state"`
	Health       HealthConfig     `yaml:"health"`
}

// GitHubConfig configures API access.
type GitHubConfig struct {
	// Token is usually written as ${GITHUB_TOKEN}.
	Token string `yaml:"token"`

	// APIBaseURL is the REST root. GitHub Enterprise uses
	// https://<host>/api/v3.
	APIBaseURL string `yaml:"api_base_url"`

	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `yaml:"timeout"`

	// PerPage is how many completed runs are fetched per workflow.
	PerPage int `yaml:"per_page"`
}

// MonitoringConfig controls the poll cycle.
type MonitoringConfig struct {
	// PollInterval is the sleep between cycles, in seconds.
	PollInterval int `yaml:"poll_interval"`

	// Branches limits monitoring to these branches. Empty means all.
	Branches []string `yaml:"branches"`

	// Workflows limits monitoring to workflows with these names, IDs
	// or file names. Empty means all.
	Workflows []string `yaml:"workflows"`

	MaxParallelWorkers int  `yaml:"max_parallel_workers"`
	EnableParallel     bool `yaml:"enable_parallel"`

	// TimeoutPerRepo bounds one repository scan, in seconds.
	TimeoutPerRepo int `yaml:"timeout_per_repo"`
}

// CommandsConfig declares shell actions and routes runs to them.
type CommandsConfig struct {
	Definitions map[string]CommandDefinition `yaml:"definitions"`

	// ExecutionMap is repository → branch → command names, with "*"
	// matching anything on either level.
	ExecutionMap map[string]map[string][]string `yaml:"execution_map"`

	// OnSuccess is the deprecated flat list run for every repository
	// and branch. Ignored when ExecutionMap is set.
	OnSuccess []LegacyCommand `yaml:"on_success"`
}

// LegacyCommand is one on_success entry. Configurations written before
// execution maps list inline command mappings; a bare string refers to
// a definition by name.
type LegacyCommand struct {
	// Name is the referenced definition, or an optional label for an
	// inline entry.
	Name string `yaml:"name,omitempty"`

	CommandDefinition `yaml:",inline"`

	// Inline is set when the entry was written as a mapping.
	Inline bool `yaml:"-"`
}

// UnmarshalYAML accepts a scalar name or a command mapping.
func (entry *LegacyCommand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*entry = LegacyCommand{}
		return node.Decode(&entry.Name)
	case yaml.MappingNode:
		type plain LegacyCommand
		var decoded plain
		if err := node.Decode(&decoded); err != nil {
			return err
		}
		*entry = LegacyCommand(decoded)
		entry.Inline = true
		return nil
	default:
		return fmt.Errorf("line %d: on_success entry must be a command name or a command mapping", node.Line)
	}
}

// MarshalYAML writes references back as bare names.
func (entry LegacyCommand) MarshalYAML() (any, error) {
	if !entry.Inline {
		return entry.Name, nil
	}
	type plain LegacyCommand
	return plain(entry), nil
}

// LegacyRoute flattens OnSuccess into the ordered names a resolver
// looks up. Inline entries are registered under "on_success[N]"
// (1-based) and returned in inline keyed by that name.
func (c CommandsConfig) LegacyRoute() (names []string, inline map[string]LegacyCommand) {
	for index, entry := range c.OnSuccess {
		if !entry.Inline {
			names = append(names, entry.Name)
			continue
		}
		key := fmt.Sprintf("on_success[%d]", index+1)
		if inline == nil {
			inline = make(map[string]LegacyCommand)
		}
		inline[key] = entry
		names = append(names, key)
	}
	return names, inline
}

// CommandDefinition is one named shell action.
type CommandDefinition struct {
	Command          string `yaml:"command"`
	WorkingDirectory string `yaml:"working_directory"`

	// Timeout in seconds. Zero picks a default from the command text.
	Timeout     int    `yaml:"timeout"`
	Description string `yaml:"description"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error, case-insensitive.
	Level string `yaml:"level"`

	// File receives JSON log lines. Empty disables file logging.
	File string `yaml:"file"`

	// Timezone is the IANA zone timestamps are rendered in.
	Timezone string `yaml:"timezone"`

	Console  ConsoleConfig        `yaml:"console"`
	Rotation RotationConfig       `yaml:"rotation"`
	Commands CommandLoggingConfig `yaml:"commands"`
}

type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RotationConfig controls daily rotation of the log file.
type RotationConfig struct {
	// Keep is how many rotated files are retained.
	Keep int `yaml:"keep"`

	// Compression is zstd, lz4 or none.
	Compression string `yaml:"compression"`
}

// CommandLoggingConfig selects what is logged about each command.
type CommandLoggingConfig struct {
	LogPermissions bool `yaml:"log_permissions"`
	LogEnvironment bool `yaml:"log_environment"`
	DetailedOutput bool `yaml:"detailed_output"`
}

// StateConfig selects where dedup state lives.
type StateConfig struct {
	// Backend is json or sqlite.
	Backend   string `yaml:"backend"`
	StateFile string `yaml:"state_file"`
	Database  string `yaml:"database"`
}

// HealthConfig controls the health file and HTTP status surface.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`

	// UpdateInterval is the minimum time between health file writes,
	// in seconds.
	UpdateInterval int `yaml:"update_interval"`

	// ListenAddress enables the HTTP status server, e.g. ":9090".
	ListenAddress string `yaml:"listen_address"`
}

// Server-mode paths.
const (
	ServerLogFile   = "/var/log/github-actions-monitor/monitor.log"
	ServerStateFile = "/var/lib/github-actions-monitor/state.json"
	ServerDatabase  = "/var/lib/github-actions-monitor/state.db"
	ServerHealth    = "/var/run/github-actions-monitor/health"
)

// Default returns the configuration every file is decoded over.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			Timeout:    30,
			PerPage:    100,
		},
		Monitoring: MonitoringConfig{
			PollInterval:       60,
			MaxParallelWorkers: 3,
			EnableParallel:     true,
			TimeoutPerRepo:     60,
		},
		Logging: LoggingConfig{
			Level:    "INFO",
			File:     ServerLogFile,
			Timezone: "Asia/Dhaka",
			Console:  ConsoleConfig{Enabled: true},
			Rotation: RotationConfig{Keep: 30, Compression: "zstd"},
			Commands: CommandLoggingConfig{
				LogPermissions: true,
				DetailedOutput: true,
			},
		},
		State: StateConfig{
			Backend:   "json",
			StateFile: ServerStateFile,
			Database:  ServerDatabase,
		},
		Health: HealthConfig{
			Enabled:        true,
			File:           ServerHealth,
			UpdateInterval: 300,
		},
	}
}

// LoadFile reads path, expands ${VAR} and ${VAR:-default} references
// in every string value, and decodes the result over Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. See LoadFile.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	if document.Kind == 0 {
		// Empty document.
		return cfg, nil
	}
	expandNode(&document)
	if err := document.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandNode rewrites scalar string values in place. Mapping keys are
// left alone.
func expandNode(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			expandNode(child)
		}
	case yaml.MappingNode:
		for index := 1; index < len(node.Content); index += 2 {
			expandNode(node.Content[index])
		}
	case yaml.ScalarNode:
		if node.Tag == "!!str" || node.Tag == "" {
			expanded := expandVars(node.Value)
			if expanded != node.Value {
				node.Value = expanded
				// Re-resolve so "${TIMEOUT:-30}" can fill an int field.
				node.Tag = ""
			}
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} with the environment value and
// ${VAR:-default} with the value or default when unset or empty. An
// unset variable without a default expands to "".
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// seconds converts a configured second count to a Duration.
func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// PollInterval returns monitoring.poll_interval as a Duration.
func (c *Config) PollInterval() time.Duration { return seconds(c.Monitoring.PollInterval) }

// TimeoutPerRepo returns monitoring.timeout_per_repo as a Duration.
func (c *Config) TimeoutPerRepo() time.Duration { return seconds(c.Monitoring.TimeoutPerRepo) }

// HTTPTimeout returns github.timeout as a Duration.
func (c *Config) HTTPTimeout() time.Duration { return seconds(c.GitHub.Timeout) }

// HealthUpdateInterval returns health.update_interval as a Duration.
func (c *Config) HealthUpdateInterval() time.Duration { return seconds(c.Health.UpdateInterval) }

// TimeoutDuration returns the timeout override, zero when unset.
func (d CommandDefinition) TimeoutDuration() time.Duration { return seconds(d.Timeout) }
