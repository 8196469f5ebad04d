// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/action"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/config"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/github"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/logging"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/source"
)

// newLogger builds the process logger. withFile selects whether the
// configured log file is opened; one-shot inspection commands log to
// the console only.
func (app *app) newLogger(cfg *config.Config, withFile bool) (*slog.Logger, func() error, error) {
	loggingConfig := logging.Config{
		Level:    cfg.Logging.Level,
		Timezone: cfg.Logging.Timezone,
		Console:  cfg.Logging.Console.Enabled || !withFile,
		Stderr:   app.stderr,
		Clock:    app.clock,
	}
	if withFile {
		loggingConfig.File = cfg.Logging.File
		loggingConfig.Keep = cfg.Logging.Rotation.Keep
		loggingConfig.Compression = logging.Compression(cfg.Logging.Rotation.Compression)
	}
	return logging.New(loggingConfig)
}

// openStore opens the configured dedup backend. The journal is nil
// for the json backend.
func (app *app) openStore(cfg *config.Config, logger *slog.Logger) (dedup.Store, dedup.Journal, error) {
	switch cfg.State.Backend {
	case "sqlite":
		store, err := dedup.OpenSQLite(dedup.SQLiteConfig{
			Path:   cfg.State.Database,
			Clock:  app.clock,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "json", "":
		return dedup.NewFileStore(cfg.State.StateFile, logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

// definitions converts the configured commands to action definitions.
// Inline on_success entries are added under their generated names.
func definitions(cfg *config.Config) (map[string]action.Definition, []string) {
	converted := make(map[string]action.Definition, len(cfg.Commands.Definitions))
	for name, definition := range cfg.Commands.Definitions {
		converted[name] = convertDefinition(name, definition)
	}
	legacyNames, inline := cfg.Commands.LegacyRoute()
	for key, entry := range inline {
		name := entry.Name
		if name == "" {
			name = key
		}
		converted[key] = convertDefinition(name, entry.CommandDefinition)
	}
	return converted, legacyNames
}

func convertDefinition(name string, definition config.CommandDefinition) action.Definition {
	return action.Definition{
		Name:             name,
		Command:          definition.Command,
		WorkingDirectory: definition.WorkingDirectory,
		Timeout:          definition.TimeoutDuration(),
		Description:      definition.Description,
	}
}

func newResolver(cfg *config.Config, logger *slog.Logger) *action.Resolver {
	converted, legacyNames := definitions(cfg)
	return action.NewResolver(action.ResolverConfig{
		Definitions:  converted,
		ExecutionMap: action.ExecutionMap(cfg.Commands.ExecutionMap),
		OnSuccess:    legacyNames,
		Logger:       logger,
	})
}

func (app *app) newRunner(cfg *config.Config, logger *slog.Logger) *action.Runner {
	return action.NewRunner(action.RunnerConfig{
		Log: action.LogOptions{
			Permissions:    cfg.Logging.Commands.LogPermissions,
			Environment:    cfg.Logging.Commands.LogEnvironment,
			DetailedOutput: cfg.Logging.Commands.DetailedOutput,
		},
		Clock:  app.clock,
		Logger: logger,
	})
}

func (app *app) newSource(cfg *config.Config, logger *slog.Logger) (*source.GitHub, error) {
	client, err := github.NewClient(github.Config{
		BaseURL:    cfg.GitHub.APIBaseURL,
		Token:      cfg.GitHub.Token,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout(), Transport: app.transport},
		Clock:      app.clock,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return source.NewGitHub(source.Config{
		Client:    client,
		Workflows: cfg.Monitoring.Workflows,
		PerPage:   cfg.GitHub.PerPage,
		Logger:    logger,
	}), nil
}
