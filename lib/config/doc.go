// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the lighthouse YAML configuration.
//
// The file is named by the --config flag (default config.yaml). String
// values may reference the environment as ${VAR} or ${VAR:-default};
// references are expanded before decoding, so secrets such as the
// GitHub token never need to be written to disk. Missing keys take the
// values from [Default]. [Config.Validate] reports every problem at
// once, and [Config.ApplyMode] relocates the log, state and health
// files for local development or server installs.
package config
