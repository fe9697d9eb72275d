// Copyright 2026 The Sclsp Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sclang-lsp/sclsp/relay"
)

// ReadyMarker is the line fragment the child prints once its embedded
// LSP server is listening. Relay startup is gated on it: datagrams sent
// earlier would land on a port nobody reads.
const ReadyMarker = "***LSP READY***"

// stopTimeout bounds how long Stop waits for the stdin watcher to
// join. The watcher's poll loop re-checks its stop channel at least
// this often, so a healthy watcher always makes the bound.
const stopTimeout = 5 * time.Second

// DefaultSclangPath returns the conventional sclang location for the
// host platform. On platforms without a convention it returns "sclang"
// and relies on PATH lookup.
func DefaultSclangPath() string {
	if runtime.GOOS == "darwin" {
		return "/Applications/SuperCollider.app/Contents/MacOS/sclang"
	}
	return "sclang"
}

// Runner owns the sclang child process and the relay components built
// around it. Configure the exported fields before calling Run; they
// must not change afterwards.
type Runner struct {
	// SclangPath is the sclang executable to launch. Required.
	SclangPath string

	// IDEName is passed to sclang as its -i argument. Defaults to
	// "vscode".
	IDEName string

	// ServerLogLevel is the log level handed to the child's LSP
	// server via SCLANG_LSP_LOGLEVEL. Defaults to "warning".
	ServerLogLevel string

	// SendPort is the child's UDP listen port; the sender targets it.
	SendPort int

	// ReceivePort is this process's UDP listen port; the receiver
	// binds it and the child sends replies to it.
	ReceivePort int

	// Output receives reassembled messages, one write per message.
	// Defaults to os.Stdout.
	Output io.Writer

	// Input is the stream relayed to the child over UDP. Defaults to
	// os.Stdin.
	Input *os.File

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	readyOnce sync.Once

	mu       sync.Mutex
	command  *exec.Cmd
	sender   *relay.Sender
	receiver *relay.Receiver
	watcher  *relay.StdinWatcher
}

// logger returns the configured logger or the default.
func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run launches sclang with extraArgs appended to its command line and
// blocks until the child exits. It returns the child's exit code after
// running the stop sequence. The context cancels the child process.
func (r *Runner) Run(ctx context.Context, extraArgs []string) (int, error) {
	if r.SclangPath == "" {
		return 0, fmt.Errorf("sclang path is required")
	}
	if r.SendPort <= 0 || r.ReceivePort <= 0 {
		return 0, fmt.Errorf("both send port and receive port must be configured")
	}
	if r.IDEName == "" {
		r.IDEName = "vscode"
	}
	if r.ServerLogLevel == "" {
		r.ServerLogLevel = "warning"
	}
	if r.Output == nil {
		r.Output = os.Stdout
	}
	if r.Input == nil {
		r.Input = os.Stdin
	}

	arguments := append([]string{"-i", r.IDEName}, extraArgs...)
	command := exec.CommandContext(ctx, r.SclangPath, arguments...)
	command.Env = append(os.Environ(), r.childEnv()...)

	r.logger().Info("launching sclang",
		"path", r.SclangPath,
		"args", arguments,
		"send_port", r.SendPort,
		"receive_port", r.ReceivePort,
	)

	stdout, err := command.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := command.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("creating stderr pipe: %w", err)
	}
	// The child's stdin is held open but unused: protocol traffic
	// reaches it over UDP, and some sclang builds exit early on a
	// closed stdin.
	childStdin, err := command.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("creating stdin pipe: %w", err)
	}
	defer childStdin.Close()

	if err := command.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("the specified sclang path does not exist: %w", err)
		}
		return 0, fmt.Errorf("starting sclang: %w", err)
	}

	r.mu.Lock()
	r.command = command
	r.mu.Unlock()

	var scanners sync.WaitGroup
	scanners.Add(2)
	go func() {
		defer scanners.Done()
		r.scanOutput(stdout, "SC:STDOUT")
	}()
	go func() {
		defer scanners.Done()
		r.scanOutput(stderr, "SC:STDERR")
	}()
	scanners.Wait()

	waitError := command.Wait()
	exitCode := command.ProcessState.ExitCode()
	if exitCode < 0 {
		// Killed by a signal; there is no child exit code to
		// propagate.
		exitCode = 1
	}
	if waitError != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitError, &exitErr) {
			r.Stop()
			return 0, fmt.Errorf("waiting for sclang: %w", waitError)
		}
	}

	r.logger().Info("sclang exited", "code", exitCode)
	r.Stop()
	return exitCode, nil
}

// Stop tears the session down in order: sender, receiver, stdin
// watcher, then the child process. Every step is skipped if that
// component was never created, and calling Stop repeatedly is safe.
func (r *Runner) Stop() {
	r.mu.Lock()
	sender := r.sender
	receiver := r.receiver
	watcher := r.watcher
	command := r.command
	r.mu.Unlock()

	r.logger().Info("stopping runner")

	if sender != nil {
		sender.Close()
	}
	if receiver != nil {
		receiver.Close()
	}
	if watcher != nil {
		watcher.Stop()
		if !watcher.Wait(stopTimeout) {
			r.logger().Warn("stdin watcher did not stop within bound", "timeout", stopTimeout)
		}
	}
	if command != nil && command.Process != nil {
		// Best effort: fails harmlessly if the child already exited.
		_ = command.Process.Signal(syscall.SIGTERM)
	}
}

// childEnv builds the environment variables that enable and configure
// the child's embedded LSP server. The child listens on our send port
// and replies to our receive port.
func (r *Runner) childEnv() []string {
	return []string{
		"SCLANG_LSP_ENABLE=1",
		fmt.Sprintf("SCLANG_LSP_LOGLEVEL=%s", r.ServerLogLevel),
		fmt.Sprintf("SCLANG_LSP_CLIENTPORT=%d", r.SendPort),
		fmt.Sprintf("SCLANG_LSP_SERVERPORT=%d", r.ReceivePort),
	}
}

// scanOutput logs the child's output stream line by line and fires the
// readiness latch on the marker. Both the stdout and stderr scanners
// share the one latch, so whichever stream carries the marker first
// wins and the other can never double-start the relay.
func (r *Runner) scanOutput(stream io.Reader, name string) {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line != "" {
			r.logger().Info("child output", "stream", name, "line", line)
		}
		if strings.Contains(line, ReadyMarker) {
			r.readyOnce.Do(r.startRelay)
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger().Error("reading child output", "stream", name, "error", err)
	}
}

// startRelay is the latch body: it brings up the receiver, the sender,
// and the stdin watcher together. Failures are logged rather than
// returned — the scanner goroutine has no caller to report to, and a
// relay-less session still supervises the child to its exit.
func (r *Runner) startRelay() {
	r.logger().Info("ready marker received, starting relay")

	receiver, err := relay.NewReceiver(r.ReceivePort, r.Output, r.logger())
	if err != nil {
		r.logger().Error("starting receiver", "error", err)
		return
	}
	sender, err := relay.NewSender(r.SendPort, r.logger())
	if err != nil {
		receiver.Close()
		r.logger().Error("starting sender", "error", err)
		return
	}
	watcher := relay.NewStdinWatcher(int(r.Input.Fd()), sender.Send, r.logger())
	if err := watcher.Start(); err != nil {
		sender.Close()
		receiver.Close()
		r.logger().Error("starting stdin watcher", "error", err)
		return
	}

	r.mu.Lock()
	r.receiver = receiver
	r.sender = sender
	r.watcher = watcher
	r.mu.Unlock()
}
