// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// sclsp runs the SuperCollider LSP server and provides stdin/stdout
// access to it.
//
// The LanguageServer.quark server embedded in sclang speaks
// Content-Length-framed LSP only over UDP. Editors and LSP clients
// almost universally expect the same framing over stdio. sclsp bridges
// the two: it launches sclang with the server enabled, waits for the
// server's readiness line, then relays framed messages between its own
// stdin/stdout and the server's UDP ports.
//
// Stdout carries nothing but protocol messages. All diagnostics go to
// the structured log, which is silent below Error unless --log-file is
// given.
package main
