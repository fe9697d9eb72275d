// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sclang-lsp/sclsp/lib/config"
	"github.com/sclang-lsp/sclsp/lib/netutil"
	"github.com/sclang-lsp/sclsp/lib/process"
	"github.com/sclang-lsp/sclsp/lib/version"
	"github.com/sclang-lsp/sclsp/runner"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options is the resolved command-line and config-file surface.
type options struct {
	sclangPath  string
	sendPort    int
	receivePort int
	ideName     string
	verbose     bool
	logFile     string
	configPath  string
}

// newFlagSet binds the flag surface to opts.
func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("sclsp", pflag.ContinueOnError)
	flagSet.StringVar(&opts.sclangPath, "sclang-path", runner.DefaultSclangPath(),
		"path to the sclang executable")
	flagSet.IntVar(&opts.sendPort, "send-port", 0,
		"UDP port the language server sends messages to (requires --receive-port)")
	flagSet.IntVar(&opts.receivePort, "receive-port", 0,
		"UDP port the language server listens on (requires --send-port)")
	flagSet.StringVar(&opts.ideName, "ide-name", "vscode",
		"IDE name passed to sclang as its -i argument")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false,
		"enable debug logging and raise the server's log level to debug")
	flagSet.StringVarP(&opts.logFile, "log-file", "l", "",
		"write log records to this file (truncated on open)")
	flagSet.StringVar(&opts.configPath, "config", "",
		"YAML config file (also settable via SCLSP_CONFIG)")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

// applyConfig fills in file-supplied values for every flag the user did
// not set explicitly. Flags always win over the file.
func applyConfig(flagSet *pflag.FlagSet, opts *options, cfg *config.Config) {
	if !flagSet.Changed("sclang-path") && cfg.SclangPath != "" {
		opts.sclangPath = cfg.SclangPath
	}
	if !flagSet.Changed("ide-name") && cfg.IDEName != "" {
		opts.ideName = cfg.IDEName
	}
	if !flagSet.Changed("send-port") && cfg.SendPort != 0 {
		opts.sendPort = cfg.SendPort
	}
	if !flagSet.Changed("receive-port") && cfg.ReceivePort != 0 {
		opts.receivePort = cfg.ReceivePort
	}
	if !flagSet.Changed("verbose") && cfg.Verbose {
		opts.verbose = true
	}
	if !flagSet.Changed("log-file") && cfg.LogFile != "" {
		opts.logFile = cfg.LogFile
	}
}

// validatePorts enforces the both-or-neither pairing of the two port
// flags.
func validatePorts(opts *options) error {
	if (opts.sendPort == 0) != (opts.receivePort == 0) {
		return fmt.Errorf("both --send-port and --receive-port must be specified (or neither)")
	}
	return nil
}

// resolvePorts maps the flag surface onto the runner's endpoint pair.
// --send-port names the port the child sends to, which is this
// process's receive side; --receive-port names the port the child
// receives on, which is this process's send target. When neither is
// given, two free ports are probed from the OS.
func resolvePorts(opts *options, logger *slog.Logger) (receivePort, sendPort int, err error) {
	if opts.sendPort != 0 {
		return opts.sendPort, opts.receivePort, nil
	}
	receivePort, sendPort, err = netutil.FreePorts()
	if err != nil {
		return 0, 0, err
	}
	logger.Info("found free ports", "receive", receivePort, "send", sendPort)
	return receivePort, sendPort, nil
}

// newLogger builds the process logger. With a log file, records at
// Warn (or Debug with --verbose) and above are written there. Without
// one, only Error records reach stderr: stdout belongs to the protocol
// and stderr should stay quiet during normal operation.
func newLogger(opts *options) (*slog.Logger, func(), error) {
	if opts.logFile == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		})
		return slog.New(handler), func() {}, nil
	}

	file, err := os.OpenFile(opts.logFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { file.Close() }, nil
}

func run() error {
	// Handle --version before flag parsing to match the usual binary
	// convention.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("sclsp")
		return nil
	}

	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	extraArgs := flagSet.Args()

	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	applyConfig(flagSet, &opts, cfg)
	extraArgs = append(append([]string{}, cfg.ExtraArgs...), extraArgs...)

	if err := validatePorts(&opts); err != nil {
		return err
	}

	logger, closeLogger, err := newLogger(&opts)
	if err != nil {
		return err
	}
	defer closeLogger()
	slog.SetDefault(logger)

	receivePort, sendPort, err := resolvePorts(&opts, logger)
	if err != nil {
		return err
	}

	serverLogLevel := "warning"
	if opts.verbose {
		serverLogLevel = "debug"
	}

	scRunner := &runner.Runner{
		SclangPath:     opts.sclangPath,
		IDEName:        opts.ideName,
		ServerLogLevel: serverLogLevel,
		SendPort:       sendPort,
		ReceivePort:    receivePort,
		Logger:         logger,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		received := <-signals
		logger.Info("received termination signal", "signal", received.String())
		scRunner.Stop()
	}()

	exitCode, err := scRunner.Run(context.Background(), extraArgs)
	signal.Stop(signals)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		// The child's exit code is the program's exit code. Close the
		// log file explicitly because os.Exit skips deferred calls.
		closeLogger()
		os.Exit(exitCode)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `sclsp - stdio access to the SuperCollider LSP server

USAGE
    sclsp [flags] [-- <extra sclang args...>]

FLAGS
%s
Everything after -- is passed to sclang verbatim.

EXAMPLES
    # Auto-discover two free UDP ports and run the default sclang
    sclsp

    # Explicit ports, verbose logging to a file, extra sclang args
    sclsp --sclang-path /path/to/sclang -v -l /tmp/sclsp.log -- -u 57300 -l custom_sclang_conf.yaml
`, flagSet.FlagUsages())
}
