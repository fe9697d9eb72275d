// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame(t *testing.T) {
	framed := Frame([]byte(`{"jsonrpc":"2.0"}`))
	want := "Content-Length: 17\r\n\r\n" + `{"jsonrpc":"2.0"}`
	if string(framed) != want {
		t.Errorf("Frame = %q, want %q", framed, want)
	}
}

func TestFrameEmptyBody(t *testing.T) {
	framed := Frame(nil)
	if string(framed) != "Content-Length: 0\r\n\r\n" {
		t.Errorf("Frame(nil) = %q", framed)
	}
}

func TestFrameDeclaresByteLengthNotRuneLength(t *testing.T) {
	body := []byte("héllo") // 6 bytes, 5 runes
	framed := Frame(body)
	if !bytes.HasPrefix(framed, []byte("Content-Length: 6\r\n\r\n")) {
		t.Errorf("Frame = %q, want byte length 6 declared", framed)
	}
}

func TestSplitHeader(t *testing.T) {
	header, rest, ok := SplitHeader([]byte("Content-Length: 5\r\n\r\nhelloextra"))
	if !ok {
		t.Fatal("SplitHeader: delimiter not found")
	}
	if string(header) != "Content-Length: 5" {
		t.Errorf("header = %q", header)
	}
	if string(rest) != "helloextra" {
		t.Errorf("rest = %q", rest)
	}
}

func TestSplitHeaderIncomplete(t *testing.T) {
	if _, _, ok := SplitHeader([]byte("Content-Length: 5\r\n")); ok {
		t.Error("SplitHeader reported a delimiter in an incomplete header")
	}
}

func TestParseContentLength(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
		err    error
	}{
		{"simple", "Content-Length: 42", 42, nil},
		{"zero", "Content-Length: 0", 0, nil},
		{"extra fields", "Content-Type: application/vscode-jsonrpc\r\nContent-Length: 9", 9, nil},
		{"missing", "Content-Type: application/vscode-jsonrpc", 0, ErrMalformedHeader},
		{"garbage", "not a header at all", 0, ErrMalformedHeader},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			length, err := ParseContentLength([]byte(test.header))
			if !errors.Is(err, test.err) {
				t.Fatalf("err = %v, want %v", err, test.err)
			}
			if length != test.want {
				t.Errorf("length = %d, want %d", length, test.want)
			}
		})
	}
}
