package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const defaultWaitDelay = 2 * time.Second

// ProcessError describes a model process that exited with a non-zero status.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("model process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("model process exited with code %d: %s", e.ExitCode, e.Stderr)
}

// SubprocessClassifier runs the model as a child process per request. The request is
// written to stdin as JSON and the response read from stdout.
type SubprocessClassifier struct {
	command   string
	args      []string
	env       []string
	waitDelay time.Duration
}

type SubprocessOption func(*SubprocessClassifier)

// WithEnv appends KEY=VALUE entries to the child environment.
func WithEnv(env ...string) SubprocessOption {
	return func(c *SubprocessClassifier) {
		c.env = append(c.env, env...)
	}
}

// WithWaitDelay bounds how long to wait for output pipes after the process is killed.
func WithWaitDelay(d time.Duration) SubprocessOption {
	return func(c *SubprocessClassifier) {
		c.waitDelay = d
	}
}

func NewSubprocessClassifier(command string, args []string, opts ...SubprocessOption) *SubprocessClassifier {
	if command == "" {
		panic("model command must not be empty")
	}
	c := &SubprocessClassifier{
		command:   command,
		args:      append([]string(nil), args...),
		waitDelay: defaultWaitDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify starts the model process and waits for its answer. Cancelling ctx kills it.
func (c *SubprocessClassifier) Classify(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode model request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.command, c.args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(), c.env...)
	cmd.WaitDelay = c.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return DecodeResponse(stdout.Bytes())
	}

	if ctx.Err() != nil {
		return Response{}, fmt.Errorf("model process aborted: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// a process may exit non-zero after reporting its own failure on stdout
		if resp, err := DecodeResponse(stdout.Bytes()); err == nil && resp.Failed() {
			return resp, nil
		}
		return Response{}, &ProcessError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   truncate(stderr.String(), 500),
		}
	}
	return Response{}, fmt.Errorf("run model process: %w", runErr)
}
