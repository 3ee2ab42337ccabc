// Package adb drives Android devices through the adb command line tool.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes one adb invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type ExecRunner struct {
	Path    string
	Timeout time.Duration
}

func NewExecRunner(path string, timeout time.Duration) *ExecRunner {
	if path == "" {
		path = "adb"
	}
	return &ExecRunner{Path: path, Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	line := r.Path + " " + strings.Join(args, " ")
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout.Bytes(), fmt.Errorf("command timed out: %s", line)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("command not found: %s: %w", r.Path, err)
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return stdout.Bytes(), fmt.Errorf("command failed (exit %d): %s: %s", ee.ExitCode(), line, msg)
	}
	return stdout.Bytes(), fmt.Errorf("failed to run %s: %w", line, err)
}
