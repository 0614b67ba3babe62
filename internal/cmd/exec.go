// Package cmd provides helpers for executing shell commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/wtstatus/wtstatus/internal/log"
)

// Run executes a command and returns stderr in the error message if it fails
func Run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return fmt.Errorf("%s", errMsg)
		}
		return err
	}
	return nil
}

// Output executes a command and returns stdout, with stderr in error if it fails
func Output(cmd *exec.Cmd) ([]byte, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return nil, fmt.Errorf("%s", errMsg)
		}
		return nil, err
	}
	return output, nil
}

// RunContext executes name with args in dir, honoring ctx cancellation, and
// logs the invocation (with duration) through the logger attached to ctx.
// A cancelled or expired ctx surfaces as ctx.Err(), not the killed process's
// exit error.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	logDone := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	err := Run(c)
	logDone(time.Since(start))

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// OutputContext executes name with args in dir, honoring ctx cancellation,
// and returns its stdout. See RunContext for cancellation and logging
// semantics.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	logDone := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	out, err := Output(c)
	logDone(time.Since(start))

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return out, err
}

// RunContextEnv behaves like RunContext but appends extraEnv on top of the
// process environment, for callers (probe subprocesses) that need to
// disable pagers/prompts without polluting the ambient environment.
func RunContextEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	logDone := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = append(os.Environ(), extraEnv...)
	err := Run(c)
	logDone(time.Since(start))

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// OutputContextEnv behaves like OutputContext but appends extraEnv on top
// of the process environment. See RunContextEnv.
func OutputContextEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) ([]byte, error) {
	logDone := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = append(os.Environ(), extraEnv...)
	out, err := Output(c)
	logDone(time.Since(start))

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return out, err
}
