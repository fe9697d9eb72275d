// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the Content-Length framing shared by both sides
// of the bridge.
//
// A framed message is:
//
//	Content-Length: <decimal-byte-count>\r\n\r\n<utf-8 body>
//
// where the declared count is the exact byte length of the body. The same
// framing is used on the stdio side and the UDP side; the UDP side differs
// only in that one framed message may be split across multiple datagrams of
// at most [MaxDatagramSize] bytes, reassembled before being treated as a
// unit again.
package wire
