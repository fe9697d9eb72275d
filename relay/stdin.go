// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// pollTimeout bounds each poll so the loop re-checks its stop
	// channel at a slow enough rate not to eat CPU.
	pollTimeout = 5 * time.Second

	// emptyReadBackoff is how long the loop sleeps when poll reported
	// readability but the read returned nothing (end of stream, or a
	// spurious wakeup). Without it a closed stdin would spin the loop.
	emptyReadBackoff = 100 * time.Millisecond
)

// StdinWatcher polls a file descriptor for readability on its own
// goroutine and hands every successful read to a callback. It exists
// because a blocking stdin read cannot be cancelled portably; the
// bounded poll lets Stop take effect promptly.
type StdinWatcher struct {
	logger *slog.Logger
	fd     int
	onData func([]byte)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewStdinWatcher prepares a watcher over fd. onData is invoked on the
// watcher goroutine with a fresh copy of each read's bytes; it must not
// retain the slice beyond the call if it needs the watcher stopped
// promptly. The logger may be nil, in which case slog.Default() is used.
func NewStdinWatcher(fd int, onData func([]byte), logger *slog.Logger) *StdinWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdinWatcher{
		logger: logger,
		fd:     fd,
		onData: onData,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start places the descriptor in non-blocking mode and launches the
// poll loop.
func (w *StdinWatcher) Start() error {
	if err := unix.SetNonblock(w.fd, true); err != nil {
		return fmt.Errorf("setting fd %d non-blocking: %w", w.fd, err)
	}
	go w.run()
	return nil
}

// Stop signals the loop to exit at its next check. Callers should
// follow up with Wait to observe completion.
func (w *StdinWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Wait blocks until the loop has exited or timeout elapses, and
// reports whether the loop finished in time.
func (w *StdinWatcher) Wait(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (w *StdinWatcher) run() {
	defer close(w.done)

	buffer := make([]byte, 64*1024)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		pollSet := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		ready, err := unix.Poll(pollSet, int(pollTimeout.Milliseconds()))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			w.logger.Error("polling input stream", "error", err)
			return
		}
		if ready == 0 {
			// Timeout: go back around and check the stop channel.
			continue
		}

		count, err := unix.Read(w.fd, buffer)
		switch {
		case count > 0:
			data := make([]byte, count)
			copy(data, buffer[:count])
			w.onData(data)
		case err == unix.EINTR:
			continue
		case err != nil && err != unix.EAGAIN:
			w.logger.Error("reading input stream", "error", err)
			return
		default:
			// Nothing to hand over despite the poll wakeup.
			time.Sleep(emptyReadBackoff)
		}
	}
}
