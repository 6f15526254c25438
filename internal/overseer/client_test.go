package overseer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterSatellite_NoCredentialHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/satellite/register" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "" {
			t.Errorf("register must be unauthenticated, got header %q", got)
		}
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Name != "sat-1" || req.IPAddress != "10.0.0.5" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(RegisterResponse{SatelliteID: 7, APIKey: "issued-key"})
	}))
	defer srv.Close()

	c := New(srv.URL, "should-not-be-sent")
	resp, err := c.RegisterSatellite(context.Background(), RegisterRequest{
		Name: "sat-1", IPAddress: "10.0.0.5", Hostname: "host", Capabilities: []string{"docker"},
	})
	if err != nil {
		t.Fatalf("RegisterSatellite() error: %v", err)
	}
	if resp.SatelliteID != 7 || resp.APIKey != "issued-key" {
		t.Errorf("response = %+v", resp)
	}
}

func TestListCapsules_AttachesCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("X-API-Key = %q, want %q", got, "secret")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"capsules": []Capsule{{ID: 1, Name: "web", Status: "running"}},
		})
	}))
	defer srv.Close()

	caps, err := New(srv.URL, "secret").ListCapsules(context.Background())
	if err != nil {
		t.Fatalf("ListCapsules() error: %v", err)
	}
	if len(caps) != 1 || caps[0].Name != "web" {
		t.Errorf("capsules = %+v", caps)
	}
}

func TestDo_Non2xxYieldsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "satellite name already registered"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").RegisterSatellite(context.Background(), RegisterRequest{Name: "dup"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "satellite name already registered" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !IsConflict(err) {
		t.Error("IsConflict() = false")
	}
}

func TestDo_NetworkFailureYieldsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL, "key").ListSatellites(context.Background())
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failure must not be an APIError")
	}
}

func TestDeleteSatellite_MethodAndPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
	}))
	defer srv.Close()

	if err := New(srv.URL, "key").DeleteSatellite(context.Background(), 42); err != nil {
		t.Fatalf("DeleteSatellite() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/satellites/42" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestCapsuleLogs_TailQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capsules/3/logs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("tail"); got != "50" {
			t.Errorf("tail = %q", got)
		}
		_ = json.NewEncoder(w).Encode(LogsResponse{
			CapsuleID: 3,
			Logs:      map[string]string{"capsule-3-web-1": "line"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "key").CapsuleLogs(context.Background(), 3, 50)
	if err != nil {
		t.Fatalf("CapsuleLogs() error: %v", err)
	}
	if resp.Logs["capsule-3-web-1"] != "line" {
		t.Errorf("logs = %+v", resp.Logs)
	}
}
