// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/config"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/version"
)

// configEnvironment overrides the default --config path.
const configEnvironment = "LIGHTHOUSE_CONFIG"

// app carries what every command needs: the root context, output
// streams and the global flags.
type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock

	// getwd anchors --local-mode paths.
	getwd func() (string, error)

	// transport carries GitHub API requests. Nil uses
	// http.DefaultTransport.
	transport http.RoundTripper

	configPath  string
	logLevel    string
	localMode   bool
	serverMode  bool
	showVersion bool
}

func newApp(ctx context.Context, stdout, stderr io.Writer) *app {
	return &app{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		clock:  clock.Real(),
		getwd:  os.Getwd,
	}
}

func (app *app) root() *Command {
	runCommand := app.runCommand()
	return &Command{
		Name:        "lighthouse",
		Summary:     "Run shell commands when GitHub Actions workflows succeed",
		Description: "Lighthouse polls GitHub Actions for fresh successful runs and runs the\ncommands routed to each run's repository and branch, once per run.",
		Output:      app.stderr,
		Flags: func() *pflag.FlagSet {
			defaultConfig := "config.yaml"
			if fromEnvironment := os.Getenv(configEnvironment); fromEnvironment != "" {
				defaultConfig = fromEnvironment
			}
			flagSet := pflag.NewFlagSet("lighthouse", pflag.ContinueOnError)
			flagSet.StringVarP(&app.configPath, "config", "c", defaultConfig, "configuration file (env "+configEnvironment+")")
			flagSet.StringVar(&app.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
			flagSet.BoolVar(&app.localMode, "local-mode", false, "keep logs, state and health under the working directory")
			flagSet.BoolVar(&app.serverMode, "server-mode", false, "use the system paths under /var")
			flagSet.BoolVar(&app.showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Subcommands: []*Command{
			runCommand,
			app.checkConfigCommand(),
			app.resolveCommand(),
			app.stateCommand(),
			app.historyCommand(),
		},
		Run: func(args []string) error {
			if app.showVersion {
				version.Print(app.stdout, "lighthouse")
				return nil
			}
			return runCommand.Run(args)
		},
	}
}

func (app *app) mode() (config.Mode, error) {
	switch {
	case app.localMode && app.serverMode:
		return config.ModeFile, errors.New("--local-mode and --server-mode are mutually exclusive")
	case app.localMode:
		return config.ModeLocal, nil
	case app.serverMode:
		return config.ModeServer, nil
	default:
		return config.ModeFile, nil
	}
}

// loadConfig reads the configuration file and applies the mode and
// --log-level overrides. It does not validate.
func (app *app) loadConfig() (*config.Config, error) {
	mode, err := app.mode()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(app.configPath)
	if err != nil {
		return nil, err
	}
	if mode == config.ModeLocal {
		workingDirectory, err := app.getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory for --local-mode: %w", err)
		}
		cfg.ApplyMode(mode, workingDirectory)
	} else {
		cfg.ApplyMode(mode, "")
	}
	if app.logLevel != "" {
		cfg.Logging.Level = app.logLevel
	}
	return cfg, nil
}

// loadValidConfig is loadConfig followed by Validate.
func (app *app) loadValidConfig() (*config.Config, error) {
	cfg, err := app.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s:\n%w", app.configPath, err)
	}
	return cfg, nil
}
