// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"os"
	"testing"
	"time"

	"github.com/sclang-lsp/sclsp/lib/testutil"
)

// pipeWatcher starts a StdinWatcher over the read end of a fresh pipe
// and returns the write end plus the channel the callback feeds.
func pipeWatcher(t *testing.T) (*os.File, <-chan []byte, *StdinWatcher) {
	t.Helper()
	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		readEnd.Close()
		writeEnd.Close()
	})

	reads := make(chan []byte, 16)
	watcher := NewStdinWatcher(int(readEnd.Fd()), func(data []byte) {
		reads <- data
	}, nil)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		watcher.Stop()
		writeEnd.Close()
		watcher.Wait(5 * time.Second)
	})

	return writeEnd, reads, watcher
}

func TestWatcherForwardsReads(t *testing.T) {
	writeEnd, reads, _ := pipeWatcher(t)

	if _, err := writeEnd.Write([]byte("Content-Length: 2\r\n\r\nok")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data := testutil.RequireReceive(t, reads, 5*time.Second, "forwarded read")
	if string(data) != "Content-Length: 2\r\n\r\nok" {
		t.Errorf("forwarded data = %q", data)
	}
}

func TestWatcherForwardsSequentialWrites(t *testing.T) {
	writeEnd, reads, _ := pipeWatcher(t)

	writeEnd.Write([]byte("first"))
	data := testutil.RequireReceive(t, reads, 5*time.Second, "first read")
	if string(data) != "first" {
		t.Errorf("first read = %q", data)
	}

	writeEnd.Write([]byte("second"))
	data = testutil.RequireReceive(t, reads, 5*time.Second, "second read")
	if string(data) != "second" {
		t.Errorf("second read = %q", data)
	}
}

func TestWatcherStopJoinsPromptly(t *testing.T) {
	writeEnd, _, watcher := pipeWatcher(t)

	watcher.Stop()
	// Closing the write end produces a poll wakeup, so the loop does
	// not sit out its full poll timeout before noticing the stop.
	writeEnd.Close()

	if !watcher.Wait(2 * time.Second) {
		t.Error("watcher did not stop within the bound")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	writeEnd, _, watcher := pipeWatcher(t)

	watcher.Stop()
	watcher.Stop()
	writeEnd.Close()

	if !watcher.Wait(2 * time.Second) {
		t.Error("watcher did not stop")
	}
}
