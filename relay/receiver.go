// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"unicode/utf8"

	"github.com/sclang-lsp/sclsp/lib/netutil"
	"github.com/sclang-lsp/sclsp/wire"
)

// Receiver listens for UDP datagrams from the child, reassembles them
// into complete framed messages, and writes each message to the output
// sink as a single write. It owns the inbound socket and the reassembly
// buffer exclusively; both are touched only by the read loop goroutine.
type Receiver struct {
	logger *slog.Logger
	output io.Writer
	conn   *net.UDPConn

	closeOnce sync.Once
	done      chan struct{}

	// Reassembly state, owned by the read loop. contentLength is -1
	// while awaiting a header, otherwise the declared body length of
	// the message currently being accumulated.
	buffer        []byte
	contentLength int
}

// NewReceiver binds a UDP socket to 127.0.0.1:port and starts the read
// loop. Reassembled messages are written to output, one Write call per
// message. The logger may be nil, in which case slog.Default() is used.
func NewReceiver(port int, output io.Writer, logger *slog.Logger) (*Receiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("binding udp 127.0.0.1:%d: %w", port, err)
	}

	receiver := &Receiver{
		logger:        logger,
		output:        output,
		conn:          conn,
		done:          make(chan struct{}),
		contentLength: -1,
	}
	go receiver.readLoop()

	logger.Info("udp receiver running", "local", conn.LocalAddr())
	return receiver, nil
}

// Port returns the bound local port, useful when binding port 0.
func (r *Receiver) Port() int {
	return r.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close shuts down the socket and waits for the read loop to finish.
// Idempotent: the first call closes and logs, subsequent calls are
// no-ops.
func (r *Receiver) Close() {
	r.closeOnce.Do(func() {
		r.conn.Close()
		<-r.done
		r.logger.Info("receiver closed")
	})
}

// readLoop reads datagrams in arrival order and feeds them to the
// reassembly buffer. It exits when the socket is closed.
func (r *Receiver) readLoop() {
	defer close(r.done)

	buffer := make([]byte, 64*1024)
	for {
		count, _, err := r.conn.ReadFromUDP(buffer)
		if err != nil {
			if !netutil.IsExpectedCloseError(err) {
				r.logger.Error("reading datagram", "error", err)
			}
			return
		}
		r.processDatagram(buffer[:count])
	}
}

// processDatagram appends one datagram's bytes to the reassembly buffer
// and extracts every complete message the buffer now holds. Messages
// are emitted in the order they complete, each with its header
// re-synthesized from the verified body length.
func (r *Receiver) processDatagram(data []byte) {
	r.buffer = append(r.buffer, data...)

	for {
		if r.contentLength < 0 {
			header, rest, ok := wire.SplitHeader(r.buffer)
			if !ok {
				// Not enough data to read the header.
				return
			}
			length, err := wire.ParseContentLength(header)
			r.buffer = rest
			if err != nil {
				r.logger.Error("invalid header received", "error", err)
				return
			}
			r.contentLength = length
		}

		if len(r.buffer) < r.contentLength {
			// Wait for more datagrams; the declared length persists.
			return
		}

		body := r.buffer[:r.contentLength]
		r.buffer = append([]byte(nil), r.buffer[r.contentLength:]...)
		r.contentLength = -1

		if !utf8.Valid(body) {
			r.logger.Error("dropping message body with invalid utf-8", "length", len(body))
			continue
		}
		if _, err := r.output.Write(wire.Frame(body)); err != nil {
			r.logger.Error("writing message to output", "error", err)
		}

		if len(r.buffer) == 0 {
			return
		}
	}
}
