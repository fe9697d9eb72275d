// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err is a normal transport
// termination: EOF, closed connection, broken pipe, or connection reset.
// The receiver's blocking read sees net.ErrClosed when its socket is
// closed out from under it during shutdown; that is the intended way to
// unblock the read loop and should not be logged as an error.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
