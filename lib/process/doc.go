// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler. It
// centralizes the one legitimate raw-stderr pattern that exists before
// the structured logger is configured: fatal error reporting from
// main() followed by process exit.
package process
