// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
)

func (app *app) stateCommand() *Command {
	return &Command{
		Name:    "state",
		Summary: "Inspect or edit the executed-run state",
		Subcommands: []*Command{
			{
				Name:    "show",
				Summary: "List executed run keys and last-checked times",
				Run: func(args []string) error {
					if len(args) > 0 {
						return fmt.Errorf("state show takes no arguments, got %q", args)
					}
					return app.showState()
				},
			},
			{
				Name:    "forget",
				Summary: "Remove run keys so those runs may dispatch again",
				Usage:   "lighthouse state forget <owner/name:workflow_id:run_id>...",
				Examples: []Example{
					{Description: "Re-run the commands for one run", Command: "lighthouse state forget acme/api:1234:987654"},
				},
				Run: func(args []string) error {
					if len(args) == 0 {
						return fmt.Errorf("state forget needs at least one run key")
					}
					return app.forgetState(args)
				},
			},
		},
	}
}

func (app *app) loadState() (dedup.Store, *dedup.State, error) {
	cfg, err := app.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := app.newLogger(cfg, false)
	if err != nil {
		return nil, nil, err
	}
	defer closeLog()

	store, _, err := app.openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	state, err := store.Load(app.ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, state, nil
}

func (app *app) showState() error {
	store, state, err := app.loadState()
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(app.stdout, "executed runs: %d\n", state.Len())
	for _, key := range state.Keys() {
		fmt.Fprintf(app.stdout, "  %s\n", key)
	}

	lastChecked := state.LastChecked()
	if len(lastChecked) == 0 {
		return nil
	}
	fmt.Fprintf(app.stdout, "\nlast checked:\n")
	table := tabwriter.NewWriter(app.stdout, 2, 0, 3, ' ', 0)
	for _, pipelineID := range slices.Sorted(maps.Keys(lastChecked)) {
		fmt.Fprintf(table, "  %s\t%s\n", pipelineID, lastChecked[pipelineID].Format(time.RFC3339))
	}
	return table.Flush()
}

func (app *app) forgetState(keys []string) error {
	store, state, err := app.loadState()
	if err != nil {
		return err
	}
	defer store.Close()

	var unknown []string
	for _, key := range keys {
		if !state.Contains(key) {
			unknown = append(unknown, key)
		}
	}
	removed := state.Forget(keys...)
	if removed > 0 {
		if err := store.Save(app.ctx, state); err != nil {
			return err
		}
	}
	fmt.Fprintf(app.stdout, "forgot %d of %d keys\n", removed, len(keys))
	if len(unknown) > 0 {
		fmt.Fprintf(app.stdout, "not present: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

func (app *app) historyCommand() *Command {
	var limit int
	return &Command{
		Name:    "history",
		Summary: "Show recent dispatches (sqlite backend)",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			flagSet.IntVarP(&limit, "limit", "n", 20, "number of dispatches to show")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("history takes no arguments, got %q", args)
			}
			return app.history(limit)
		},
	}
}

func (app *app) history(limit int) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	if cfg.State.Backend != "sqlite" {
		return errors.New("history requires state.backend: sqlite")
	}
	logger, closeLog, err := app.newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := dedup.OpenSQLite(dedup.SQLiteConfig{Path: cfg.State.Database, Clock: app.clock, Logger: logger})
	if err != nil {
		return err
	}
	defer store.Close()

	dispatches, err := store.Dispatches(app.ctx, limit)
	if err != nil {
		return err
	}
	if len(dispatches) == 0 {
		fmt.Fprintln(app.stdout, "no dispatches recorded")
		return nil
	}

	table := tabwriter.NewWriter(app.stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(table, "TIME\tRUN\tBRANCH\tMARKED\tCOMMANDS\n")
	for _, dispatch := range dispatches {
		fmt.Fprintf(table, "%s\t%s\t%s\t%t\t%s\n",
			dispatch.At.Format(time.RFC3339),
			dispatch.RunKey,
			dispatch.Branch,
			dispatch.Marked,
			commandSummary(dispatch.Commands),
		)
	}
	return table.Flush()
}

// commandSummary renders "deploy=success notify=non_zero_exit(3)".
func commandSummary(commands []dedup.CommandRecord) string {
	if len(commands) == 0 {
		return "(none)"
	}
	parts := make([]string, len(commands))
	for index, command := range commands {
		part := command.Name + "=" + command.Outcome
		if command.ExitCode != 0 {
			part += fmt.Sprintf("(%d)", command.ExitCode)
		}
		parts[index] = part
	}
	return strings.Join(parts, " ")
}
