// Package service keeps the uplink agent resident as a host-level
// background service. It abstracts over launchd and systemd behind one
// Supervisor interface; hosts with neither get a variant that fails fast
// on every operation.
package service

import (
	"context"
	"errors"
	"time"

	"voidnet/config"
)

// Status is the tri-state a backend's output maps to.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// ErrUnsupportedPlatform marks hosts without a supported service manager.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// restartDelay separates stop from start so the OS releases the previous
// process's listening port before the rebind.
const restartDelay = 1 * time.Second

// Supervisor manages the uplink agent's host service. Operations are
// synchronous and must not run concurrently against the same service; the
// CLI guarantees that by being single-invocation-per-command.
type Supervisor interface {
	// Install regenerates the service definition from current config
	// values and overwrites any prior definition. Idempotent: unchanged
	// config yields a byte-identical file.
	Install(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// Restart is stop, a short delay, then start.
	Restart(ctx context.Context) error
	Status(ctx context.Context) (Status, error)
	// Logs tails (or follows) the service's logs via the backend's
	// native viewer, writing to the process's stdout.
	Logs(ctx context.Context, tail int, follow bool) error
}

// Option configures a Supervisor.
type Option func(*options)

type options struct {
	runner Runner
	sleep  func(time.Duration)
}

// WithRunner substitutes the external-tool runner (tests use a fake).
func WithRunner(r Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithSleep substitutes the restart delay (tests skip the real wait).
func WithSleep(f func(time.Duration)) Option {
	return func(o *options) { o.sleep = f }
}

// restart is the shared stop-wait-start sequence. The stop error aborts
// the restart; a host with the service already stopped should call Start.
func restart(ctx context.Context, s Supervisor, sleep func(time.Duration)) error {
	if err := s.Stop(ctx); err != nil {
		return err
	}
	sleep(restartDelay)
	return s.Start(ctx)
}

// New selects the backend for the configured service type. The selection
// happens once; callers hold the Supervisor for the process lifetime.
func New(cfg *config.Config, opts ...Option) Supervisor {
	o := &options{runner: execRunner{}, sleep: time.Sleep}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.Service.Type {
	case "launchd":
		return &launchd{cfg: cfg, run: o.runner, sleep: o.sleep}
	case "systemd":
		return &systemd{cfg: cfg, run: o.runner, sleep: o.sleep}
	default:
		return unsupported{typ: cfg.Service.Type}
	}
}
