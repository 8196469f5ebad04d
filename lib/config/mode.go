// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "path/filepath"

// Mode selects where lighthouse keeps its log, state and health files.
type Mode int

const (
	// ModeFile keeps the paths from the configuration file.
	ModeFile Mode = iota

	// ModeLocal puts everything under the working directory, for
	// development without root.
	ModeLocal

	// ModeServer uses the system paths under /var.
	ModeServer
)

// ApplyMode rewrites the file paths for mode. workingDirectory anchors
// ModeLocal paths.
func (c *Config) ApplyMode(mode Mode, workingDirectory string) {
	switch mode {
	case ModeLocal:
		c.Logging.File = filepath.Join(workingDirectory, "logs", "monitor.log")
		c.State.StateFile = filepath.Join(workingDirectory, "data", "state.json")
		c.State.Database = filepath.Join(workingDirectory, "data", "state.db")
		c.Health.File = filepath.Join(workingDirectory, "data", "health")
	case ModeServer:
		c.Logging.File = ServerLogFile
		c.State.StateFile = ServerStateFile
		c.State.Database = ServerDatabase
		c.Health.File = ServerHealth
	}
}

func (mode Mode) String() string {
	switch mode {
	case ModeLocal:
		return "local"
	case ModeServer:
		return "server"
	default:
		return "file"
	}
}
