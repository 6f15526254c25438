// Package docker implements the uplink's ContainerRuntime using the
// Docker Engine API.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"voidnet/internal/uplink"
)

var _ uplink.ContainerRuntime = (*Runtime)(nil)

// Runtime wraps a Docker client.
type Runtime struct {
	cli *client.Client
}

// NewRuntime creates a Runtime from the environment (DOCKER_HOST etc.).
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing Docker client.
func NewRuntimeFromClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

func (r *Runtime) ListContainers(ctx context.Context, all bool) ([]uplink.Container, error) {
	summaries, err := r.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	out := make([]uplink.Container, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, uplink.Container{
			ID:     shortID(s.ID),
			Name:   primaryName(s.Names),
			Image:  s.Image,
			Status: s.Status,
			Ports:  formatPorts(s.Ports),
		})
	}
	return out, nil
}

// StopContainer stops one container. A container that disappeared between
// listing and stopping counts as stopped.
func (r *Runtime) StopContainer(ctx context.Context, id string) error {
	if err := r.cli.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("stop container %q: %w", id, err)
	}
	return nil
}

func (r *Runtime) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
		Tail:       strconv.Itoa(tail),
	}
	rc, err := r.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		return "", fmt.Errorf("container logs %q: %w", id, err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(stripStreamFraming(data)), nil
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}

// shortID truncates a container ID to the familiar 12-character form.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// primaryName picks the first name the runtime reports, without the
// leading slash.
func primaryName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

func formatPorts(ports []container.Port) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.PublicPort == 0 {
			out = append(out, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			continue
		}
		ip := p.IP
		if ip == "" {
			ip = "0.0.0.0"
		}
		out = append(out, fmt.Sprintf("%d/%s->%s:%d", p.PrivatePort, p.Type, ip, p.PublicPort))
	}
	return out
}

// stripStreamFraming removes the 8-byte multiplexing header docker puts on
// each log chunk when the container runs without a TTY.
func stripStreamFraming(data []byte) []byte {
	var clean []byte
	for len(data) >= 8 {
		size := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
		data = data[8:]
		if size > len(data) {
			size = len(data)
		}
		clean = append(clean, data[:size]...)
		data = data[size:]
	}
	return bytes.TrimSpace(clean)
}
