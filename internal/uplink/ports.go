package uplink

import (
	"context"

	"voidnet/internal/compose"
)

// Container is one container as reported by the runtime.
type Container struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Image  string   `json:"image"`
	Status string   `json:"status"`
	Ports  []string `json:"ports"`
}

// ContainerRuntime is the uplink's view of the local container runtime.
// The agent keeps no shadow database of running capsules: every request
// derives state from a live listing, so recorded and actual state cannot
// drift.
type ContainerRuntime interface {
	// ListContainers returns containers on this host. all includes
	// stopped ones.
	ListContainers(ctx context.Context, all bool) ([]Container, error)
	// StopContainer stops one container by ID or name.
	StopContainer(ctx context.Context, id string) error
	// ContainerLogs returns the last tail lines of one container's logs,
	// with timestamps.
	ContainerLogs(ctx context.Context, id string, tail int) (string, error)
}

// WorkloadExecutor runs a compose descriptor against the runtime.
// Implemented by compose.Executor; faked in tests.
type WorkloadExecutor interface {
	Execute(ctx context.Context, descriptor string, action compose.Action, project string) compose.Result
}
