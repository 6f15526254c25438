package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Action is one compose operation the executor knows how to run.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
	ActionLogs Action = "logs"
)

// Per-action wall-clock limits. Exceeding one is a failure, not a hang;
// the child process is killed so no compose invocation outlives its caller.
const (
	upTimeout   = 300 * time.Second
	downTimeout = 60 * time.Second
	logsTimeout = 30 * time.Second

	defaultLogTail = 100
)

// Result is the outcome of one runtime invocation. Output and Error carry
// captured stdout/stderr verbatim — the executor never interprets them.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Executor materializes a descriptor to a transient file and drives the
// container runtime's compose subcommand over it. Every invocation gets a
// fresh uniquely-named file, so concurrent deploys on the same host never
// collide on a shared path. The executor does not serialize invocations:
// two concurrent deploys of the same capsule target the same compose
// project, and which one the running containers end up reflecting is
// decided by the runtime.
type Executor struct {
	binary   string
	baseArgs []string
	tempDir  string
	logTail  int
	timeouts map[Action]time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRuntime overrides the runtime binary and its compose-equivalent
// subcommand. Defaults to "docker compose".
func WithRuntime(binary string, baseArgs ...string) ExecutorOption {
	return func(e *Executor) {
		e.binary = binary
		e.baseArgs = baseArgs
	}
}

// WithTempDir overrides where transient descriptor files are written.
func WithTempDir(dir string) ExecutorOption {
	return func(e *Executor) { e.tempDir = dir }
}

// WithTimeout overrides the wall-clock limit for one action.
func WithTimeout(action Action, d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeouts[action] = d }
}

// WithLogTail sets how many log lines an ActionLogs invocation requests.
func WithLogTail(lines int) ExecutorOption {
	return func(e *Executor) { e.logTail = lines }
}

// NewExecutor creates an Executor driving "docker compose" by default.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		binary:   "docker",
		baseArgs: []string{"compose"},
		tempDir:  os.TempDir(),
		logTail:  defaultLogTail,
		timeouts: map[Action]time.Duration{
			ActionUp:   upTimeout,
			ActionDown: downTimeout,
			ActionLogs: logsTimeout,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute writes descriptor to a transient file, runs the runtime's
// compose subcommand with the given action, and returns the captured
// outcome. project, when non-empty, is passed as the compose project name
// so container names follow the capsule naming contract.
//
// Execute never returns an error: runtime failures (nonzero exit, timeout,
// missing binary) are captured in the Result so the caller can relay them
// to the operator.
func (e *Executor) Execute(ctx context.Context, descriptor string, action Action, project string) Result {
	path := filepath.Join(e.tempDir, "uplink-"+uuid.NewString()+".yaml")
	if err := os.WriteFile(path, []byte(descriptor), 0o600); err != nil {
		return Result{Success: false, Error: fmt.Sprintf("write descriptor: %v", err)}
	}
	defer func() {
		// Cleanup failure is logged, never masks the invocation result.
		if err := os.Remove(path); err != nil {
			slog.Warn("remove transient descriptor failed", "path", path, "err", err)
		}
	}()

	args := append([]string{}, e.baseArgs...)
	args = append(args, "-f", path)
	if project != "" {
		args = append(args, "-p", project)
	}
	switch action {
	case ActionUp:
		args = append(args, "up", "-d", "--build")
	case ActionDown:
		args = append(args, "down")
	case ActionLogs:
		args = append(args, "logs", "--tail", strconv.Itoa(e.logTail), "--timestamps")
	default:
		return Result{Success: false, Error: fmt.Sprintf("unknown action %q", action)}
	}

	timeout, ok := e.timeouts[action]
	if !ok {
		timeout = logsTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return Result{
			Success: false,
			Output:  stdout.String(),
			Error:   fmt.Sprintf("%s timed out after %s", action, timeout),
		}
	}
	if err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		return Result{Success: false, Output: stdout.String(), Error: msg}
	}
	return Result{Success: true, Output: stdout.String(), Error: stderr.String()}
}
