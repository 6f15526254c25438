// Package overseer is the typed HTTP client for the Overseer control plane.
//
// One method per Overseer operation. Every authenticated call attaches the
// satellite credential as an X-API-Key header; RegisterSatellite and Health
// are the only unauthenticated calls. The client never retries — retry
// policy belongs to the caller.
package overseer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	apiKeyHeader = "X-API-Key"

	// shortTimeout bounds registration and health probes.
	shortTimeout = 10 * time.Second
	// defaultTimeout bounds CRUD and list calls.
	defaultTimeout = 30 * time.Second
	// deployTimeout is longer: a deploy may run image builds.
	deployTimeout = 60 * time.Second
)

// Client talks to one Overseer. Construct it explicitly and pass it where
// needed; there is no package-level client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (tests use httptest's).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the Overseer at baseURL. apiKey may be empty
// when only unauthenticated calls will be made.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterSatellite performs the one-time registration handshake.
// Unauthenticated: the credential in the response is what all later calls
// authenticate with.
func (c *Client) RegisterSatellite(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(ctx, http.MethodPost, "/satellite/register", shortTimeout, false, req, &resp)
	return resp, err
}

// ListSatellites returns all registered satellites.
func (c *Client) ListSatellites(ctx context.Context) ([]Satellite, error) {
	var env satellitesEnvelope
	err := c.do(ctx, http.MethodGet, "/satellites", defaultTimeout, true, nil, &env)
	return env.Satellites, err
}

// GetSatellite returns one satellite by ID.
func (c *Client) GetSatellite(ctx context.Context, id int64) (Satellite, error) {
	var sat Satellite
	err := c.do(ctx, http.MethodGet, "/satellites/"+strconv.FormatInt(id, 10), defaultTimeout, true, nil, &sat)
	return sat, err
}

// DeleteSatellite removes a satellite record from the Overseer.
func (c *Client) DeleteSatellite(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/satellites/"+strconv.FormatInt(id, 10), defaultTimeout, true, nil, nil)
}

// ListCapsules returns all capsules.
func (c *Client) ListCapsules(ctx context.Context) ([]Capsule, error) {
	var env capsulesEnvelope
	err := c.do(ctx, http.MethodGet, "/capsules", defaultTimeout, true, nil, &env)
	return env.Capsules, err
}

// GetCapsule returns one capsule by ID.
func (c *Client) GetCapsule(ctx context.Context, id int64) (Capsule, error) {
	var cap Capsule
	err := c.do(ctx, http.MethodGet, "/capsules/"+strconv.FormatInt(id, 10), defaultTimeout, true, nil, &cap)
	return cap, err
}

// CreateCapsule creates a capsule record on the Overseer.
func (c *Client) CreateCapsule(ctx context.Context, req CreateCapsuleRequest) (Capsule, error) {
	var cap Capsule
	err := c.do(ctx, http.MethodPost, "/capsules", defaultTimeout, true, req, &cap)
	return cap, err
}

// DeployCapsule asks the Overseer to deploy a capsule to its satellite.
// Uses the long timeout: the satellite may rebuild images.
func (c *Client) DeployCapsule(ctx context.Context, id int64) (DeployResponse, error) {
	var resp DeployResponse
	err := c.do(ctx, http.MethodPost, "/capsules/"+strconv.FormatInt(id, 10)+"/deploy", deployTimeout, true, nil, &resp)
	return resp, err
}

// StopCapsule asks the Overseer to stop a capsule's containers.
func (c *Client) StopCapsule(ctx context.Context, id int64) (DeployResponse, error) {
	var resp DeployResponse
	err := c.do(ctx, http.MethodPost, "/capsules/"+strconv.FormatInt(id, 10)+"/stop", defaultTimeout, true, nil, &resp)
	return resp, err
}

// CapsuleLogs fetches the last tail lines of every container of a capsule.
func (c *Client) CapsuleLogs(ctx context.Context, id int64, tail int) (LogsResponse, error) {
	path := fmt.Sprintf("/capsules/%d/logs?tail=%s", id, url.QueryEscape(strconv.Itoa(tail)))
	var resp LogsResponse
	err := c.do(ctx, http.MethodPost, path, defaultTimeout, true, nil, &resp)
	return resp, err
}

// Health probes the Overseer. Unauthenticated.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", shortTimeout, false, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, authed bool, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail pulls a human-readable message out of an error body.
// The Overseer answers {"detail": ...}; {"error": ...} is accepted too.
func errorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	return strings.TrimSpace(string(data))
}
