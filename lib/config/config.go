// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the command-line flag surface. Zero values mean
// "not set in the file"; the CLI applies its own defaults afterwards.
type Config struct {
	// SclangPath is the sclang executable to launch.
	SclangPath string `yaml:"sclang_path"`

	// IDEName is passed to sclang as its -i argument.
	IDEName string `yaml:"ide_name"`

	// SendPort is the UDP port the child sends to (this process's
	// receive side). Must be set together with ReceivePort or not at
	// all; the CLI enforces the pairing.
	SendPort int `yaml:"send_port"`

	// ReceivePort is the UDP port the child listens on.
	ReceivePort int `yaml:"receive_port"`

	// Verbose enables debug logging and raises the child server's log
	// level to debug.
	Verbose bool `yaml:"verbose"`

	// LogFile is the log destination. Empty means stderr at Error
	// level only.
	LogFile string `yaml:"log_file"`

	// ExtraArgs are appended verbatim to the sclang command line,
	// before any arguments given after -- on the command line.
	ExtraArgs []string `yaml:"extra_args"`
}

// Load loads configuration from the SCLSP_CONFIG environment variable.
// Returns an empty Config when the variable is not set: the config
// file is optional and the flag surface stands alone.
func Load() (*Config, error) {
	path := os.Getenv("SCLSP_CONFIG")
	if path == "" {
		return &Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are rejected so a typo in the file fails loudly instead of silently
// falling back to a default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}
