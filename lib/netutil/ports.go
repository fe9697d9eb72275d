// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"net"
)

// FreePorts asks the OS for two distinct free localhost ports. Both
// probe sockets are held open until the second has been bound, so the
// kernel cannot hand out the same port twice. The ports are released
// before returning; the caller binds them shortly afterwards, which is
// racy in principle but fine in practice for a tool that owns the
// session it is setting up.
func FreePorts() (int, int, error) {
	first, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, 0, fmt.Errorf("probing first free port: %w", err)
	}
	defer first.Close()

	second, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, 0, fmt.Errorf("probing second free port: %w", err)
	}
	defer second.Close()

	firstPort := first.Addr().(*net.TCPAddr).Port
	secondPort := second.Addr().(*net.TCPAddr).Port
	return firstPort, secondPort, nil
}
