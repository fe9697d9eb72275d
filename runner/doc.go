// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner supervises the sclang child process and coordinates
// the relay lifecycle around it.
//
// [Runner.Run] launches sclang with the environment variables that
// enable its embedded LSP server and scans the child's stdout and
// stderr line by line, logging every line. The first line containing
// [ReadyMarker] fires a one-shot latch that brings up the UDP receiver,
// the UDP sender, and the stdin watcher together; a repeated marker
// never starts duplicate listeners. Run blocks until the child exits,
// performs the ordered stop sequence, and returns the child's exit
// code.
//
// [Runner.Stop] is safe to call multiple times and from a signal
// handler. It closes the sender, then the receiver, joins the stdin
// watcher with a bounded timeout, and finally asks the child to
// terminate. The child's exit is always observed by Run, never by
// Stop.
package runner
