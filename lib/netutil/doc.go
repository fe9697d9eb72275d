// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides small networking helpers shared by the relay
// and the CLI: free-port discovery for the UDP endpoint pair and
// classification of the errors produced by closing a socket during
// shutdown.
package netutil
