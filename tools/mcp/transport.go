package mcp

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// ServerParameters describes how to launch a stdio MCP server process.
type ServerParameters struct {
	// Command is the executable, e.g. "npx".
	Command string

	// Args are passed verbatim to the command.
	Args []string

	// Env entries in KEY=VALUE form, appended to the parent environment.
	Env []string

	// Dir is the working directory. Empty means inherit.
	Dir string
}

// stdioTransport owns a server subprocess and its pipes. The server
// speaks newline-delimited JSON-RPC on stdin/stdout; stderr is drained
// into the logger so a crashing server leaves a trace.
type stdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *zap.Logger
}

func startStdioTransport(params ServerParameters, logger *zap.Logger) (*stdioTransport, error) {
	if params.Command == "" {
		return nil, fmt.Errorf("mcp: server command is empty")
	}

	cmd := exec.Command(params.Command, params.Args...)
	cmd.Dir = params.Dir
	if len(params.Env) > 0 {
		cmd.Env = append(cmd.Environ(), params.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mcp: failed to start %s: %w", params.Command, err)
	}

	t := &stdioTransport{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		logger: logger.With(zap.String("command", params.Command)),
	}
	go t.drainStderr(stderr)

	t.logger.Info("started MCP server process", zap.Int("pid", cmd.Process.Pid))
	return t, nil
}

func (t *stdioTransport) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		t.logger.Debug("server stderr", zap.String("line", scanner.Text()))
	}
}

// Close shuts the server down: closing stdin signals EOF, then we wait
// briefly for a clean exit before killing the process.
func (t *stdioTransport) Close() error {
	_ = t.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- t.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.logger.Warn("server did not exit, killing", zap.Int("pid", t.cmd.Process.Pid))
		_ = t.cmd.Process.Kill()
		return <-done
	}
}
