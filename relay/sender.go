// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/sclang-lsp/sclsp/wire"
)

// Sender transmits framed messages to the child's UDP listen port,
// splitting each message into datagrams of at most wire.MaxDatagramSize
// bytes. It owns the outbound socket exclusively.
type Sender struct {
	logger *slog.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// NewSender opens a UDP socket connected to 127.0.0.1:port. The logger
// may be nil, in which case slog.Default() is used.
func NewSender(port int, logger *slog.Logger) (*Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing udp 127.0.0.1:%d: %w", port, err)
	}
	logger.Info("udp sender running", "remote", conn.RemoteAddr())
	return &Sender{logger: logger, conn: conn}, nil
}

// Send transmits data as a sequence of datagrams in original byte
// order. A failed chunk write is logged and does not abort the
// remaining chunks: each chunk is independently best-effort, consistent
// with the unreliable-transport contract. After Close, Send logs a
// warning and performs no I/O.
func (s *Sender) Send(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("attempted to send data on a closed sender")
		return
	}

	for offset := 0; offset < len(data); offset += wire.MaxDatagramSize {
		end := min(offset+wire.MaxDatagramSize, len(data))
		if _, err := s.conn.Write(data[offset:end]); err != nil {
			s.logger.Error("sending chunk", "offset", offset, "error", err)
		}
	}
}

// Close releases the socket. Idempotent: the first call closes and
// logs, subsequent calls are no-ops.
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
	s.logger.Info("sender closed")
}
