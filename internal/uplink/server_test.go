package uplink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"voidnet/internal/compose"
)

type fakeRuntime struct {
	mu         sync.Mutex
	containers []Container
	listErr    error
	logsErr    map[string]error
	logs       map[string]string
	stopped    []string
	stopErr    map[string]error
}

func (f *fakeRuntime) ListContainers(ctx context.Context, all bool) ([]Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Container, len(f.containers))
	copy(out, f.containers)
	return out, nil
}

func (f *fakeRuntime) StopContainer(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.stopErr[id]; err != nil {
		return err
	}
	f.stopped = append(f.stopped, id)
	remaining := f.containers[:0]
	for _, ct := range f.containers {
		if ct.ID != id {
			remaining = append(remaining, ct)
		}
	}
	f.containers = remaining
	return nil
}

func (f *fakeRuntime) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.logsErr[id]; err != nil {
		return "", err
	}
	return f.logs[id], nil
}

type fakeExecutor struct {
	mu       sync.Mutex
	calls    int
	lastSpec string
	lastAct  compose.Action
	lastProj string
	result   compose.Result
}

func (f *fakeExecutor) Execute(ctx context.Context, descriptor string, action compose.Action, project string) compose.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSpec = descriptor
	f.lastAct = action
	f.lastProj = project
	return f.result
}

func newTestServer(apiKey string, rt *fakeRuntime, ex *fakeExecutor) *Server {
	if rt == nil {
		rt = &fakeRuntime{}
	}
	if ex == nil {
		ex = &fakeExecutor{result: compose.Result{Success: true}}
	}
	return &Server{Name: "sat-test", Version: "test", APIKey: apiKey, Runtime: rt, Executor: ex}
}

func doJSON(t *testing.T, srv *Server, method, target, apiKey string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestDeploy_Success(t *testing.T) {
	ex := &fakeExecutor{result: compose.Result{Success: true, Output: "built and started"}}
	srv := newTestServer("secret", nil, ex)

	w := doJSON(t, srv, http.MethodPost, "/deploy", "secret",
		`{"capsule_id": 42, "compose_file": "services:\n  web:\n    image: nginx\n"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if ex.lastAct != compose.ActionUp {
		t.Errorf("action = %q, want up", ex.lastAct)
	}
	if ex.lastProj != "capsule-42" {
		t.Errorf("project = %q, want capsule-42", ex.lastProj)
	}

	var resp struct {
		CapsuleID int64  `json:"capsule_id"`
		Message   string `json:"message"`
		Output    string `json:"output"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CapsuleID != 42 || resp.Output != "built and started" {
		t.Errorf("response = %+v", resp)
	}
}

func TestDeploy_ExecutorFailureIs500WithStderr(t *testing.T) {
	ex := &fakeExecutor{result: compose.Result{Success: false, Error: "image pull backoff"}}
	srv := newTestServer("secret", nil, ex)

	w := doJSON(t, srv, http.MethodPost, "/deploy", "secret",
		`{"capsule_id": 1, "compose_file": "services: {}"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "image pull backoff") {
		t.Errorf("body = %s, want captured stderr", w.Body)
	}
}

func TestDeploy_InvalidKeyNeverInvokesExecutor(t *testing.T) {
	ex := &fakeExecutor{result: compose.Result{Success: true}}
	srv := newTestServer("secret", nil, ex)

	w := doJSON(t, srv, http.MethodPost, "/deploy", "wrong-key",
		`{"capsule_id": 1, "compose_file": "services: {}"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid API key") {
		t.Errorf("body = %s", w.Body)
	}
	if ex.calls != 0 {
		t.Errorf("executor invoked %d times on rejected request", ex.calls)
	}
}

func TestDeploy_MissingKeyRejected(t *testing.T) {
	srv := newTestServer("secret", nil, nil)
	w := doJSON(t, srv, http.MethodPost, "/deploy", "",
		`{"capsule_id": 1, "compose_file": "services: {}"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestOpenMode_AcceptsWithoutKey(t *testing.T) {
	rt := &fakeRuntime{}
	srv := newTestServer("", rt, nil)
	w := doJSON(t, srv, http.MethodGet, "/containers", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, open mode must accept unauthenticated requests", w.Code)
	}
}

func TestStop_DiscoversByNamingContract(t *testing.T) {
	rt := &fakeRuntime{containers: []Container{
		{ID: "aaa", Name: "capsule-42-web-1"},
		{ID: "bbb", Name: "capsule-7-db-1"},
		{ID: "ccc", Name: "unrelated"},
	}}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodPost, "/stop", "secret", `{"capsule_id": 42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if len(rt.stopped) != 1 || rt.stopped[0] != "aaa" {
		t.Errorf("stopped = %v, want exactly [aaa]", rt.stopped)
	}
	if !strings.Contains(w.Body.String(), "Stopped 1 containers") {
		t.Errorf("body = %s", w.Body)
	}
}

func TestStop_NoMatchIs404(t *testing.T) {
	rt := &fakeRuntime{containers: []Container{{ID: "x", Name: "capsule-7-db-1"}}}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodPost, "/stop", "secret", `{"capsule_id": 42}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (not silent success)", w.Code)
	}
}

func TestDeployThenStop_LeavesNoMatchingContainers(t *testing.T) {
	rt := &fakeRuntime{containers: []Container{
		{ID: "a", Name: "capsule-42-web-1"},
		{ID: "b", Name: "capsule-42-db-1"},
	}}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodPost, "/stop", "secret", `{"capsule_id": 42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Stopped 2 containers") {
		t.Errorf("body = %s", w.Body)
	}
	remaining, _ := rt.ListContainers(context.Background(), true)
	for _, ct := range remaining {
		if BelongsToCapsule(ct.Name, 42) {
			t.Errorf("container %q still present after stop", ct.Name)
		}
	}
}

func TestLogs_PartialFailureEmbedsErrors(t *testing.T) {
	rt := &fakeRuntime{
		containers: []Container{
			{ID: "a", Name: "capsule-42-web-1"},
			{ID: "b", Name: "capsule-42-db-1"},
		},
		logs:    map[string]string{"a": "web log lines"},
		logsErr: map[string]error{"b": errors.New("log stream broken")},
	}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodGet, "/logs?capsule_id=42&tail=10", "secret", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, one bad container must not abort the call", w.Code)
	}

	var resp struct {
		CapsuleID int64             `json:"capsule_id"`
		Logs      map[string]string `json:"logs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Logs["capsule-42-web-1"] != "web log lines" {
		t.Errorf("healthy container logs = %q", resp.Logs["capsule-42-web-1"])
	}
	if !strings.Contains(resp.Logs["capsule-42-db-1"], "log stream broken") {
		t.Errorf("failing container value = %q, want embedded error", resp.Logs["capsule-42-db-1"])
	}
}

func TestLogs_NoMatchIs404(t *testing.T) {
	srv := newTestServer("secret", &fakeRuntime{}, nil)
	w := doJSON(t, srv, http.MethodGet, "/logs?capsule_id=42", "secret", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestContainers_Unfiltered(t *testing.T) {
	rt := &fakeRuntime{containers: []Container{
		{ID: "a", Name: "capsule-1-web-1", Image: "nginx", Status: "running", Ports: []string{"80/tcp->0.0.0.0:8080"}},
		{ID: "b", Name: "other", Image: "redis", Status: "exited"},
	}}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodGet, "/containers", "secret", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Containers []Container `json:"containers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Containers) != 2 {
		t.Errorf("containers = %+v, want unfiltered listing", resp.Containers)
	}
}

func TestHealth_HealthyCountsRunning(t *testing.T) {
	rt := &fakeRuntime{containers: []Container{{ID: "a", Name: "capsule-1-web-1"}}}
	srv := newTestServer("secret", rt, nil)

	// Health is unauthenticated by design.
	w := doJSON(t, srv, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["satellite_name"] != "sat-test" {
		t.Errorf("satellite_name = %v", resp["satellite_name"])
	}
	if fmt.Sprintf("%v", resp["running_containers"]) != "1" {
		t.Errorf("running_containers = %v", resp["running_containers"])
	}
}

func TestHealth_DegradedNeverErrors(t *testing.T) {
	rt := &fakeRuntime{listErr: errors.New("cannot connect to the runtime socket")}
	srv := newTestServer("secret", rt, nil)

	w := doJSON(t, srv, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, health must always answer", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", resp["status"])
	}
	if !strings.Contains(fmt.Sprintf("%v", resp["error"]), "runtime socket") {
		t.Errorf("error = %v, want cause", resp["error"])
	}
}

func TestRoot_Banner(t *testing.T) {
	srv := newTestServer("secret", nil, nil)
	w := doJSON(t, srv, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Void Uplink") {
		t.Errorf("body = %s", w.Body)
	}
}
