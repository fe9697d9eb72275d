// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration-file loading for sclsp.
//
// Configuration is loaded from a single YAML file specified by:
//   - the SCLSP_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// There are no fallbacks or automatic discovery, and environment
// variables never override file values. Command-line flags, when given
// explicitly, win over the file. This keeps the effective configuration
// deterministic: file, then flags, nothing hidden.
package config
