// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay implements the transport-translation layer between the
// stdio side and the UDP side of the bridge.
//
// [Sender] splits outbound framed messages into datagrams of at most
// wire.MaxDatagramSize bytes and sends them to the child's listen port.
// No framing is added between chunks: the message already carries its
// own Content-Length header, and loopback UDP preserves datagram order
// for same-source/same-destination traffic, so the receiving side can
// reassemble by simple concatenation. There are no sequence numbers and
// no retransmission; this matches the protocol spoken by the child's
// embedded server, which makes the same loopback-ordering assumption.
//
// [Receiver] owns the inbound socket and the reassembly buffer. It
// accumulates datagrams, extracts complete Content-Length-framed
// messages, and writes each one to the output sink as a single atomic
// write, in the order they complete.
//
// [StdinWatcher] is the one dedicated background worker of the system:
// a poll loop over the blocking input descriptor that hands every read
// to a callback. It shares no mutable state with the rest of the
// system; the callback boundary is its only interface.
package relay
