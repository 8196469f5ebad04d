// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

// DefaultGracePeriod is how long a timed-out command has between
// SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// outputPreviewLimit bounds logged output when detailed output is off.
const outputPreviewLimit = 500

// LogOptions selects what the runner logs about each command.
type LogOptions struct {
	// Permissions logs working directory diagnostics at debug level
	// before every command. Diagnostics are always logged on failure.
	Permissions bool

	// Environment logs the injected run variables at debug level.
	Environment bool

	// DetailedOutput logs captured output line by line. When false,
	// output is logged as a single value truncated to 500 bytes.
	DetailedOutput bool
}

// RunnerConfig holds the parameters for NewRunner.
type RunnerConfig struct {
	// GracePeriod is the delay between SIGTERM and SIGKILL on timeout.
	// Defaults to DefaultGracePeriod.
	GracePeriod time.Duration

	Log LogOptions

	// Clock measures command duration. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Runner executes Definitions as shell commands.
type Runner struct {
	gracePeriod time.Duration
	log         LogOptions
	clock       clock.Clock
	logger      *slog.Logger
}

// NewRunner returns a Runner for config.
func NewRunner(config RunnerConfig) *Runner {
	gracePeriod := config.GracePeriod
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{gracePeriod: gracePeriod, log: config.Log, clock: clk, logger: logger}
}

// Run executes definition via "sh -c" with the run variables added to
// the process environment, and reports how it ended. It never returns
// an error and never panics on command failure.
//
// The command runs in its own process group. On timeout the group
// receives SIGTERM, then SIGKILL after the grace period, so children
// spawned by the shell are terminated with it. Cancelling ctx does not
// stop a command already running: only its own timeout does, so a
// shutdown never leaves an action half done.
func (runner *Runner) Run(ctx context.Context, definition Definition, runContext RunContext) Outcome {
	directory := definition.WorkingDirectory
	if directory == "" {
		directory, _ = os.Getwd()
	}
	timeout := definition.EffectiveTimeout()
	logger := runner.logger.With("command", definition.Name)

	logger.Info("starting command",
		"description", definition.label(),
		"working_directory", directory,
		"timeout", timeout,
	)
	logger.Debug("command text", "shell", definition.Command)
	if runner.log.Permissions {
		logger.Debug("working directory diagnostics", directoryDiagnostics(directory)...)
	}
	if runner.log.Environment {
		for _, variable := range runContext.Variables() {
			logger.Debug("command environment", "name", variable[0], "value", variable[1])
		}
	}

	started := runner.clock.Now()
	outcome := runner.execute(ctx, definition, directory, timeout, runContext)
	outcome.Command = definition.Name
	outcome.Duration = runner.clock.Now().Sub(started)

	runner.logOutcome(logger, outcome, timeout, directory)
	return outcome
}

// signalGroup sends a signal to a process group. Tests replace it.
var signalGroup = unix.Kill

func (runner *Runner) execute(ctx context.Context, definition Definition, directory string, timeout time.Duration, runContext RunContext) Outcome {
	if err := checkDirectory(directory); err != nil {
		return Outcome{Kind: classifyStartError(err), Err: err}
	}

	commandContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(commandContext, "sh", "-c", definition.Command)
	cmd.Dir = directory
	cmd.Env = runContext.environ(os.Environ())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	gracePeriod := runner.gracePeriod
	exited := make(chan struct{})
	cmd.Cancel = func() error {
		processGroupID := -cmd.Process.Pid
		if err := signalGroup(processGroupID, unix.SIGTERM); err != nil {
			return signalGroup(processGroupID, unix.SIGKILL)
		}
		go func() {
			timer := time.NewTimer(gracePeriod)
			defer timer.Stop()
			select {
			case <-timer.C:
				// ESRCH once the group has exited is harmless.
				_ = signalGroup(processGroupID, unix.SIGKILL)
			case <-exited:
				// The group ID may already belong to another process.
			}
		}()
		return nil
	}
	// Bounds Wait when a descendant escaped the group and still holds
	// the output pipes.
	cmd.WaitDelay = gracePeriod + time.Second

	err := cmd.Run()
	close(exited)
	outcome := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}

	if errors.Is(commandContext.Err(), context.DeadlineExceeded) {
		outcome.Kind = TimedOut
		outcome.Err = commandContext.Err()
		return outcome
	}
	if err == nil {
		outcome.Kind = Success
		return outcome
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		if code := exitError.ExitCode(); code >= 0 {
			outcome.Kind = NonZeroExit
			outcome.ExitCode = code
			return outcome
		}
		outcome.Kind = Unexpected
		outcome.Err = err
		return outcome
	}

	outcome.Kind = classifyStartError(err)
	outcome.Err = err
	return outcome
}

// classifyStartError maps an error from preparing or starting the
// command to an OutcomeKind by its OS error kind.
func classifyStartError(err error) OutcomeKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	default:
		return Unexpected
	}
}

func (runner *Runner) logOutcome(logger *slog.Logger, outcome Outcome, timeout time.Duration, directory string) {
	switch outcome.Kind {
	case Success:
		logger.Info("command succeeded", "duration", outcome.Duration)
	case NonZeroExit:
		logger.Warn("command exited with non-zero status",
			"exit_code", outcome.ExitCode,
			"duration", outcome.Duration,
		)
	case TimedOut:
		logger.Error("command timed out",
			"timeout", timeout,
			"duration", outcome.Duration,
		)
	default:
		logger.Error("command could not run",
			"outcome", outcome.Kind.String(),
			"error", outcome.Err,
			"duration", outcome.Duration,
		)
	}

	runner.logOutput(logger, "stdout", outcome.Stdout, slog.LevelInfo)
	stderrLevel := slog.LevelWarn
	if outcome.Succeeded() {
		stderrLevel = slog.LevelInfo
	}
	runner.logOutput(logger, "stderr", outcome.Stderr, stderrLevel)

	if !outcome.Succeeded() {
		logger.Warn("working directory diagnostics", directoryDiagnostics(directory)...)
	}
}

func (runner *Runner) logOutput(logger *slog.Logger, stream, output string, level slog.Level) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	ctx := context.Background()
	if !runner.log.DetailedOutput {
		truncated := len(output) > outputPreviewLimit
		if truncated {
			output = output[:outputPreviewLimit]
		}
		logger.Log(ctx, level, "command output", "stream", stream, "output", output, "truncated", truncated)
		return
	}
	for line := range strings.Lines(output) {
		logger.Log(ctx, level, "command output", "stream", stream, "line", strings.TrimRight(line, "\n"))
	}
}
