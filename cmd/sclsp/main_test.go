// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"testing"

	"github.com/sclang-lsp/sclsp/lib/config"
)

func TestValidatePorts(t *testing.T) {
	tests := []struct {
		name    string
		send    int
		receive int
		wantErr bool
	}{
		{"neither", 0, 0, false},
		{"both", 57210, 57211, false},
		{"send only", 57210, 0, true},
		{"receive only", 0, 57211, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := &options{sendPort: test.send, receivePort: test.receive}
			err := validatePorts(opts)
			if (err != nil) != test.wantErr {
				t.Errorf("validatePorts(%d, %d) error = %v, wantErr %v",
					test.send, test.receive, err, test.wantErr)
			}
		})
	}
}

func TestResolvePortsExplicitMapping(t *testing.T) {
	// --send-port is the port the child sends to: our receive side.
	// --receive-port is the port the child listens on: our send target.
	opts := &options{sendPort: 57210, receivePort: 57211}
	receivePort, sendPort, err := resolvePorts(opts, slog.Default())
	if err != nil {
		t.Fatalf("resolvePorts: %v", err)
	}
	if receivePort != 57210 {
		t.Errorf("receive port = %d, want 57210 (--send-port)", receivePort)
	}
	if sendPort != 57211 {
		t.Errorf("send port = %d, want 57211 (--receive-port)", sendPort)
	}
}

func TestResolvePortsProbesWhenUnset(t *testing.T) {
	opts := &options{}
	receivePort, sendPort, err := resolvePorts(opts, slog.Default())
	if err != nil {
		t.Fatalf("resolvePorts: %v", err)
	}
	if receivePort == 0 || sendPort == 0 || receivePort == sendPort {
		t.Errorf("probed ports = %d, %d", receivePort, sendPort)
	}
}

func TestApplyConfigFlagWins(t *testing.T) {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse([]string{"--ide-name", "emacs", "--verbose"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	applyConfig(flagSet, &opts, &config.Config{
		SclangPath: "/from/file/sclang",
		IDEName:    "neovim",
		LogFile:    "/from/file/log",
	})

	if opts.ideName != "emacs" {
		t.Errorf("ideName = %q, explicit flag should win over the file", opts.ideName)
	}
	if opts.sclangPath != "/from/file/sclang" {
		t.Errorf("sclangPath = %q, unset flag should take the file value", opts.sclangPath)
	}
	if opts.logFile != "/from/file/log" {
		t.Errorf("logFile = %q, unset flag should take the file value", opts.logFile)
	}
	if !opts.verbose {
		t.Error("verbose flag lost during config merge")
	}
}

func TestApplyConfigPorts(t *testing.T) {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	applyConfig(flagSet, &opts, &config.Config{SendPort: 57210, ReceivePort: 57211})
	if opts.sendPort != 57210 || opts.receivePort != 57211 {
		t.Errorf("ports = %d, %d, want file values", opts.sendPort, opts.receivePort)
	}
	if err := validatePorts(&opts); err != nil {
		t.Errorf("validatePorts after config merge: %v", err)
	}
}

func TestFlagSetPassesTrailingArgs(t *testing.T) {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse([]string{"-v", "--", "-u", "57300"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	args := flagSet.Args()
	if len(args) != 2 || args[0] != "-u" || args[1] != "57300" {
		t.Errorf("trailing args = %v, want [-u 57300]", args)
	}
}
