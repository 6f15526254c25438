// Package registration drives the satellite lifecycle against the Overseer:
// detect this host's identity, perform the registration handshake, install
// the uplink agent as a host service, and tear it all down again.
package registration

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"voidnet/config"
	"voidnet/internal/overseer"
	"voidnet/internal/service"
)

// defaultAgentURL is where the freshly started uplink agent answers.
const defaultAgentURL = "http://localhost:8001"

// defaultAgentWait bounds how long Register waits for the agent to come up.
const defaultAgentWait = 30 * time.Second

// ControlPlane is the slice of the Overseer API registration needs.
// *overseer.Client satisfies it; tests use a fake.
type ControlPlane interface {
	RegisterSatellite(ctx context.Context, req overseer.RegisterRequest) (overseer.RegisterResponse, error)
	ListSatellites(ctx context.Context) ([]overseer.Satellite, error)
	DeleteSatellite(ctx context.Context, id int64) error
}

// Identity is what this host announces to the Overseer.
type Identity struct {
	Name         string
	IP           string
	Hostname     string
	Capabilities []string
}

// DetectIdentity builds the host identity. An empty name falls back to the
// hostname. The IP comes from resolving the hostname; when that fails the
// loopback address is announced and a warning logged, since the Overseer
// stores the address but the agent is reached by it.
func DetectIdentity(name string) Identity {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if name == "" {
		name = hostname
	}

	ip := "127.0.0.1"
	if addrs, err := net.LookupIP(hostname); err == nil {
		for _, a := range addrs {
			if v4 := a.To4(); v4 != nil && !v4.IsLoopback() {
				ip = v4.String()
				break
			}
		}
	}
	if ip == "127.0.0.1" {
		slog.Warn("could not determine a routable IP, announcing loopback",
			"hostname", hostname)
	}

	return Identity{
		Name:         name,
		IP:           ip,
		Hostname:     hostname,
		Capabilities: []string{"docker"},
	}
}

// Registrar runs registration and unregistration against one Overseer.
type Registrar struct {
	Plane   ControlPlane
	Service service.Supervisor
	Config  *config.Config

	// AgentURL is the local uplink base URL polled after service start.
	AgentURL string
	// AgentWait bounds the post-start health poll.
	AgentWait time.Duration
	// HTTPClient performs the health probes.
	HTTPClient *http.Client
}

func (r *Registrar) agentURL() string {
	if r.AgentURL != "" {
		return r.AgentURL
	}
	return defaultAgentURL
}

func (r *Registrar) agentWait() time.Duration {
	if r.AgentWait > 0 {
		return r.AgentWait
	}
	return defaultAgentWait
}

func (r *Registrar) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 5 * time.Second}
}

// Register performs the full registration sequence: handshake with the
// Overseer, persist the issued credential, install and start the agent
// service, then wait until the local agent answers its health endpoint.
// Registration is complete only when the agent is reachable.
func (r *Registrar) Register(ctx context.Context, id Identity) (overseer.RegisterResponse, error) {
	resp, err := r.Plane.RegisterSatellite(ctx, overseer.RegisterRequest{
		Name:         id.Name,
		IPAddress:    id.IP,
		Hostname:     id.Hostname,
		Capabilities: id.Capabilities,
	})
	if err != nil {
		return overseer.RegisterResponse{}, err
	}

	r.Config.Satellite = config.Satellite{
		Name:     id.Name,
		IP:       id.IP,
		Hostname: id.Hostname,
		APIKey:   resp.APIKey,
	}
	if err := r.Config.Save(); err != nil {
		return resp, fmt.Errorf("persist credential: %w", err)
	}

	if err := r.Service.Install(ctx); err != nil {
		return resp, fmt.Errorf("install agent service: %w", err)
	}
	if err := r.Service.Start(ctx); err != nil {
		return resp, fmt.Errorf("start agent service: %w", err)
	}

	if err := r.waitForAgent(ctx); err != nil {
		return resp, fmt.Errorf("agent did not become healthy: %w", err)
	}
	return resp, nil
}

// Unregister removes this satellite. The remote record is deleted first;
// when that fails the local state is left untouched so the operation can
// be retried. Only after the remote delete succeeds is the local service
// stopped and the credential cleared.
func (r *Registrar) Unregister(ctx context.Context) error {
	name := r.Config.Satellite.Name
	if name == "" {
		return fmt.Errorf("this host is not registered")
	}

	sats, err := r.Plane.ListSatellites(ctx)
	if err != nil {
		return fmt.Errorf("resolve satellite %q: %w", name, err)
	}
	var found *overseer.Satellite
	for i := range sats {
		if sats[i].Name == name {
			found = &sats[i]
			break
		}
	}

	if found != nil {
		if err := r.Plane.DeleteSatellite(ctx, found.ID); err != nil {
			return fmt.Errorf("delete satellite %d: %w", found.ID, err)
		}
	} else {
		slog.Warn("satellite not found on overseer, cleaning up locally", "name", name)
	}

	if err := r.Service.Stop(ctx); err != nil {
		slog.Warn("stopping agent service failed", "error", err)
	}

	r.Config.ClearSatellite()
	if err := r.Config.Save(); err != nil {
		return fmt.Errorf("clear local state: %w", err)
	}
	return nil
}

// waitForAgent polls the local agent's health endpoint until it answers
// with any HTTP status. The agent reports degraded states in the body, so
// reachability alone ends the wait.
func (r *Registrar) waitForAgent(ctx context.Context) error {
	url := r.agentURL() + "/health"
	client := r.httpClient()

	probe := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = r.agentWait()
	return backoff.Retry(probe, backoff.WithContext(bo, ctx))
}
