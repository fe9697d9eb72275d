// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MaxDatagramSize is the largest payload sent in a single UDP datagram.
// 508 bytes is the conservative maximum guaranteed not to fragment at the
// IP layer (576-byte minimum reassembly size minus 60 bytes of IP header
// and 8 bytes of UDP header).
const MaxDatagramSize = 508

// HeaderDelimiter separates the header block from the message body.
var HeaderDelimiter = []byte("\r\n\r\n")

// ErrMalformedHeader is returned when a header block carries no parseable
// Content-Length field.
var ErrMalformedHeader = errors.New("wire: header has no parseable Content-Length")

// contentLengthPattern matches the Content-Length field anywhere in the
// header block, tolerating additional header fields around it.
var contentLengthPattern = regexp.MustCompile(`Content-Length: (\d+)`)

// Frame wraps body in a Content-Length header. The declared length is the
// byte length of body as given; the caller is responsible for the body
// being valid UTF-8.
func Frame(body []byte) []byte {
	framed := make([]byte, 0, len(body)+32)
	framed = append(framed, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))...)
	framed = append(framed, body...)
	return framed
}

// SplitHeader locates the header delimiter in buffer and returns the
// header block and the bytes following the delimiter. ok is false when
// the delimiter has not arrived yet.
func SplitHeader(buffer []byte) (header, rest []byte, ok bool) {
	index := bytes.Index(buffer, HeaderDelimiter)
	if index < 0 {
		return nil, nil, false
	}
	return buffer[:index], buffer[index+len(HeaderDelimiter):], true
}

// ParseContentLength extracts the declared body length from a header
// block. Returns ErrMalformedHeader when no Content-Length field is
// present.
func ParseContentLength(header []byte) (int, error) {
	match := contentLengthPattern.FindSubmatch(header)
	if match == nil {
		return 0, ErrMalformedHeader
	}
	length, err := strconv.Atoi(string(match[1]))
	if err != nil {
		// The pattern only matches digits; Atoi can still fail on
		// values that overflow int.
		return 0, fmt.Errorf("wire: Content-Length %q: %w", match[1], err)
	}
	return length, nil
}
