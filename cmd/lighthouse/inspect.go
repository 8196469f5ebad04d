// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
)

func (app *app) checkConfigCommand() *Command {
	return &Command{
		Name:    "check-config",
		Summary: "Validate the configuration and print the routing table",
		Description: "Load and validate the configuration file, then print its fingerprint\n" +
			"and, for every execution map entry, the commands it resolves to.\n" +
			"Undefined or empty commands are listed as warnings.",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("check-config takes no arguments, got %q", args)
			}
			return app.checkConfig()
		},
	}
}

func (app *app) checkConfig() error {
	cfg, err := app.loadValidConfig()
	if err != nil {
		return err
	}
	mode, _ := app.mode()

	out := tabwriter.NewWriter(app.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintf(out, "config:\t%s\n", app.configPath)
	fmt.Fprintf(out, "fingerprint:\t%s\n", cfg.Fingerprint())
	fmt.Fprintf(out, "mode:\t%s\n", mode)
	fmt.Fprintf(out, "repositories:\t%s\n", strings.Join(cfg.Repositories, ", "))
	switch cfg.State.Backend {
	case "sqlite":
		fmt.Fprintf(out, "state:\tsqlite %s\n", cfg.State.Database)
	default:
		fmt.Fprintf(out, "state:\tjson %s\n", cfg.State.StateFile)
	}
	fmt.Fprintf(out, "log file:\t%s\n", cfg.Logging.File)
	if cfg.Health.Enabled {
		fmt.Fprintf(out, "health file:\t%s\n", cfg.Health.File)
	}
	out.Flush()

	fmt.Fprintf(app.stdout, "\nRouting:\n")
	table := tabwriter.NewWriter(app.stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(table, "  REPOSITORY\tBRANCH\tCOMMANDS\n")
	switch {
	case len(cfg.Commands.ExecutionMap) > 0:
		for _, repository := range slices.Sorted(maps.Keys(cfg.Commands.ExecutionMap)) {
			branches := cfg.Commands.ExecutionMap[repository]
			for _, branch := range slices.Sorted(maps.Keys(branches)) {
				fmt.Fprintf(table, "  %s\t%s\t%s\n", repository, branch, commandList(branches[branch]))
			}
		}
	case len(cfg.Commands.OnSuccess) > 0:
		legacyNames, _ := cfg.Commands.LegacyRoute()
		fmt.Fprintf(table, "  *\t*\t%s (on_success, deprecated)\n", commandList(legacyNames))
	default:
		fmt.Fprintf(table, "  *\t*\t(none)\n")
	}
	table.Flush()

	warnings := cfg.Warnings()
	if len(warnings) > 0 {
		fmt.Fprintf(app.stdout, "\nWarnings (affected commands are skipped at run time):\n")
		for _, warning := range warnings {
			fmt.Fprintf(app.stdout, "  %s\n", warning)
		}
		fmt.Fprintf(app.stdout, "\nConfiguration is valid with %d warning(s).\n", len(warnings))
		return nil
	}
	fmt.Fprintf(app.stdout, "\nConfiguration is valid.\n")
	return nil
}

func commandList(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func (app *app) resolveCommand() *Command {
	return &Command{
		Name:    "resolve",
		Summary: "Show which commands a repository and branch would run",
		Usage:   "lighthouse resolve <owner/name> <branch>",
		Examples: []Example{
			{Command: "lighthouse resolve acme/api main"},
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: lighthouse resolve <owner/name> <branch>")
			}
			return app.resolve(args[0], args[1])
		},
	}
}

func (app *app) resolve(repository, branch string) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := app.newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	resolution := newResolver(cfg, logger).Resolve(repository, branch)
	if resolution.Requested == 0 {
		fmt.Fprintf(app.stdout, "%s %s: no commands configured\n", repository, branch)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s %s: %d of %d commands\n",
		repository, branch, len(resolution.Definitions), resolution.Requested)
	table := tabwriter.NewWriter(app.stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(table, "  NAME\tTIMEOUT\tDIRECTORY\tCOMMAND\n")
	for _, definition := range resolution.Definitions {
		directory := definition.WorkingDirectory
		if directory == "" {
			directory = "."
		}
		fmt.Fprintf(table, "  %s\t%s\t%s\t%s\n",
			definition.Name, definition.EffectiveTimeout(), directory, definition.Command)
	}
	table.Flush()
	if len(resolution.Skipped) > 0 {
		fmt.Fprintf(app.stdout, "skipped: %s\n", strings.Join(resolution.Skipped, ", "))
	}
	return nil
}
