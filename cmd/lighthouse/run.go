// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/dedup"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/health"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/logging"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/monitor"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/version"
)

func (app *app) runCommand() *Command {
	var once bool
	return &Command{
		Name:    "run",
		Summary: "Run the monitor loop (default)",
		Description: "Scan every configured repository each poll interval, run the commands\n" +
			"routed to fresh successful runs, and persist which runs were handled.\n" +
			"SIGINT or SIGTERM stops the loop after in-flight commands finish.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.BoolVar(&once, "once", false, "run a single cycle and exit; exit status 1 if any repository failed")
			return flagSet
		},
		Examples: []Example{
			{Description: "Run against a development config with local paths", Command: "lighthouse --config dev.yaml --local-mode run"},
			{Description: "Single cycle from cron", Command: "lighthouse run --once"},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("run takes no arguments, got %q", args)
			}
			return app.runMonitor(once)
		},
	}
}

func (app *app) runMonitor(once bool) error {
	cfg, err := app.loadValidConfig()
	if err != nil {
		return err
	}
	mode, _ := app.mode()

	logger, closeLog, err := app.newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("lighthouse starting",
		"version", version.Info(),
		"config", app.configPath,
		"fingerprint", cfg.Fingerprint(),
		"mode", mode.String(),
		"repositories", len(cfg.Repositories),
		"state_backend", cfg.State.Backend,
	)
	for _, warning := range cfg.Warnings() {
		logger.Warn("configuration problem, affected commands will be skipped", "problem", warning)
	}

	runSource, err := app.newSource(cfg, logger)
	if err != nil {
		return err
	}

	store, journal, err := app.openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.Load(app.ctx)
	if err != nil {
		logger.Error("loading state failed, starting with empty state", "error", err)
		state = dedup.NewState()
	}

	scanner := monitor.NewScanner(monitor.ScannerConfig{
		Source:   runSource,
		State:    state,
		Resolver: newResolver(cfg, logger),
		Runner:   app.newRunner(cfg, logger),
		Journal:  journal,
		Branches: cfg.Monitoring.Branches,
		Clock:    app.clock,
		Logger:   logger,
	})

	observers := []monitor.Observer{runSource}
	if cfg.Health.Enabled {
		location, _ := logging.LoadLocation(cfg.Logging.Timezone)
		reporter, err := health.NewFileReporter(health.FileReporterConfig{
			Path:           cfg.Health.File,
			UpdateInterval: cfg.HealthUpdateInterval(),
			Location:       location,
			Clock:          app.clock,
			Logger:         logger,
		})
		if err != nil {
			return err
		}
		if err := reporter.Update(); err != nil {
			logger.Warn("writing health file failed", "path", cfg.Health.File, "error", err)
		}
		observers = append(observers, reporter)
	}

	var lighthouse *monitor.Monitor
	var status *health.Status
	if cfg.Health.ListenAddress != "" && !once {
		status = health.NewStatus(health.StatusConfig{
			PollInterval: cfg.PollInterval(),
			Phase:        func() monitor.Phase { return lighthouse.Phase() },
			Clock:        app.clock,
		})
		observers = append(observers, status)
	}

	lighthouse, err = monitor.New(monitor.Config{
		Repositories:       cfg.Repositories,
		PollInterval:       cfg.PollInterval(),
		EnableParallel:     cfg.Monitoring.EnableParallel,
		MaxParallelWorkers: cfg.Monitoring.MaxParallelWorkers,
		TimeoutPerRepo:     cfg.TimeoutPerRepo(),
		Scanner:            scanner,
		Source:             runSource,
		State:              state,
		Store:              store,
		Observers:          observers,
		Clock:              app.clock,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	if once {
		report := lighthouse.RunCycle(app.ctx)
		if report.Failed > 0 {
			return &ExitError{Code: 1}
		}
		return nil
	}

	serverDone := make(chan struct{})
	if status != nil {
		server, err := health.NewServer(health.ServerConfig{
			Address: cfg.Health.ListenAddress,
			Handler: status.Handler(),
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		go func() {
			defer close(serverDone)
			if err := server.Serve(app.ctx); err != nil {
				logger.Error("status server failed", "error", err)
			}
		}()
	} else {
		close(serverDone)
	}

	if err := lighthouse.Run(app.ctx); err != nil {
		return err
	}
	<-serverDone
	logger.Info("lighthouse stopped")
	return nil
}
