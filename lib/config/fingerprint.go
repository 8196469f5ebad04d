// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// fingerprintKey separates config fingerprints from any other BLAKE3
// use. ASCII "lighthouse.config", zero-padded to 32 bytes.
var fingerprintKey = [32]byte{
	'l', 'i', 'g', 'h', 't', 'h', 'o', 'u', 's', 'e', '.',
	'c', 'o', 'n', 'f', 'i', 'g',
}

// Fingerprint returns a short stable digest of the effective
// configuration, excluding the token. Two processes reporting the same
// fingerprint run with the same settings.
func (c *Config) Fingerprint() string {
	redacted := *c
	redacted.GitHub.Token = ""

	// yaml.v3 sorts map keys, so equal configurations encode equally.
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		panic("config: encoding for fingerprint: " + err.Error())
	}

	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("config: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)[:8])
}
