package service

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// Runner executes one service-manager tool invocation. A tool failure is
// a recoverable error for the caller, never a crash.
type Runner interface {
	// Run executes the tool and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Stream executes the tool with output wired to this process's
	// stdout/stderr (log following).
	Stream(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func (execRunner) Stream(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
