package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voidnet/config"
)

// fakeRunner records every invocation and replays canned responses keyed
// by the joined command line.
type fakeRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmd)
	return f.outputs[cmd], f.errs[cmd]
}

func (f *fakeRunner) Stream(_ context.Context, name string, args ...string) error {
	cmd := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmd)
	return f.errs[cmd]
}

func testConfig(t *testing.T, serviceType string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Overseer.URL = "http://overseer.example:8000"
	cfg.Satellite.Name = "sat-1"
	cfg.Satellite.IP = "10.0.0.5"
	cfg.Satellite.APIKey = "secret"
	cfg.Paths.PlistPath = filepath.Join(dir, "com.void.uplink.plist")
	cfg.Paths.UnitPath = filepath.Join(dir, "void-uplink.service")
	if serviceType == "launchd" {
		cfg.Service = config.Service{Type: "launchd", Name: "com.void.uplink"}
	} else {
		cfg.Service = config.Service{Type: serviceType, Name: "void-uplink"}
	}
	return cfg
}

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New(testConfig(t, "launchd")).(*launchd); !ok {
		t.Error("launchd config did not select launchd backend")
	}
	if _, ok := New(testConfig(t, "systemd")).(*systemd); !ok {
		t.Error("systemd config did not select systemd backend")
	}
	if _, ok := New(testConfig(t, "openrc")).(unsupported); !ok {
		t.Error("unknown type did not select unsupported backend")
	}
}

func TestLaunchdInstallIdempotent(t *testing.T) {
	cfg := testConfig(t, "launchd")
	sup := New(cfg, WithRunner(newFakeRunner()))

	ctx := context.Background()
	if err := sup.Install(ctx); err != nil {
		t.Fatalf("first install: %v", err)
	}
	first, err := os.ReadFile(cfg.Paths.PlistPath)
	if err != nil {
		t.Fatalf("read plist: %v", err)
	}
	if err := sup.Install(ctx); err != nil {
		t.Fatalf("second install: %v", err)
	}
	second, err := os.ReadFile(cfg.Paths.PlistPath)
	if err != nil {
		t.Fatalf("read plist: %v", err)
	}
	if string(first) != string(second) {
		t.Error("reinstall with unchanged config produced a different plist")
	}

	content := string(first)
	for _, want := range []string{
		"<string>com.void.uplink</string>",
		"<string>http://overseer.example:8000</string>",
		"<string>sat-1</string>",
		"<string>10.0.0.5</string>",
		"<string>secret</string>",
		"<key>KeepAlive</key>",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("plist missing %q", want)
		}
	}
}

func TestLaunchdStopUnloads(t *testing.T) {
	cfg := testConfig(t, "launchd")
	run := newFakeRunner()
	sup := New(cfg, WithRunner(run))

	if err := sup.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(run.calls) != 1 || !strings.HasPrefix(run.calls[0], "launchctl unload ") {
		t.Errorf("stop calls = %v, want single launchctl unload", run.calls)
	}
}

func TestLaunchdStatus(t *testing.T) {
	cfg := testConfig(t, "launchd")
	run := newFakeRunner()
	run.outputs["launchctl list"] = "123\t0\tcom.void.uplink"
	sup := New(cfg, WithRunner(run))

	st, err := sup.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != StatusRunning {
		t.Errorf("status = %q, want running", st)
	}

	run.outputs["launchctl list"] = "123\t0\tcom.apple.something"
	st, err = sup.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != StatusStopped {
		t.Errorf("status = %q, want stopped", st)
	}
}

func TestSystemdInstallWritesUnitAndReloads(t *testing.T) {
	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	sup := New(cfg, WithRunner(run))

	if err := sup.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}

	data, err := os.ReadFile(cfg.Paths.UnitPath)
	if err != nil {
		t.Fatalf("read unit: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"After=network.target docker.service",
		`Environment="OVERSEER_URL=http://overseer.example:8000"`,
		`Environment="SATELLITE_NAME=sat-1"`,
		`Environment="OVERSEER_API_KEY=secret"`,
		"Restart=always",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("unit missing %q", want)
		}
	}

	if len(run.calls) != 1 || run.calls[0] != "systemctl daemon-reload" {
		t.Errorf("install calls = %v, want daemon-reload", run.calls)
	}
}

func TestSystemdStartEnablesFirst(t *testing.T) {
	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	sup := New(cfg, WithRunner(run))

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	want := []string{"systemctl enable void-uplink", "systemctl start void-uplink"}
	if len(run.calls) != 2 || run.calls[0] != want[0] || run.calls[1] != want[1] {
		t.Errorf("start calls = %v, want %v", run.calls, want)
	}
}

func TestSystemdStatusMapping(t *testing.T) {
	cases := []struct {
		output string
		err    error
		want   Status
	}{
		{"active", nil, StatusRunning},
		{"activating", errors.New("exit status 3"), StatusRunning},
		{"inactive", errors.New("exit status 3"), StatusStopped},
		{"failed", errors.New("exit status 3"), StatusStopped},
	}
	for _, tc := range cases {
		cfg := testConfig(t, "systemd")
		run := newFakeRunner()
		run.outputs["systemctl is-active void-uplink"] = tc.output
		run.errs["systemctl is-active void-uplink"] = tc.err
		sup := New(cfg, WithRunner(run))

		st, err := sup.Status(context.Background())
		if err != nil {
			t.Fatalf("status(%q): %v", tc.output, err)
		}
		if st != tc.want {
			t.Errorf("status(%q) = %q, want %q", tc.output, st, tc.want)
		}
	}

	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	run.outputs["systemctl is-active void-uplink"] = "garbled"
	run.errs["systemctl is-active void-uplink"] = errors.New("exit status 4")
	if _, err := New(cfg, WithRunner(run)).Status(context.Background()); err == nil {
		t.Error("unrecognized output with error should surface the error")
	}
}

func TestRestartOrdering(t *testing.T) {
	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	var slept time.Duration
	sup := New(cfg, WithRunner(run), WithSleep(func(d time.Duration) {
		slept = d
		run.calls = append(run.calls, fmt.Sprintf("sleep %s", d))
	}))

	if err := sup.Restart(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	want := []string{
		"systemctl stop void-uplink",
		"sleep 1s",
		"systemctl enable void-uplink",
		"systemctl start void-uplink",
	}
	if len(run.calls) != len(want) {
		t.Fatalf("restart calls = %v, want %v", run.calls, want)
	}
	for i := range want {
		if run.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, run.calls[i], want[i])
		}
	}
	if slept != restartDelay {
		t.Errorf("slept %s, want %s", slept, restartDelay)
	}
}

func TestRestartAbortsOnStopFailure(t *testing.T) {
	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	run.errs["systemctl stop void-uplink"] = errors.New("exit status 1")
	sup := New(cfg, WithRunner(run), WithSleep(func(time.Duration) {
		t.Error("restart slept after a failed stop")
	}))

	if err := sup.Restart(context.Background()); err == nil {
		t.Fatal("restart should fail when stop fails")
	}
	if len(run.calls) != 1 {
		t.Errorf("calls after failed stop = %v", run.calls)
	}
}

func TestSystemdLogsArgs(t *testing.T) {
	cfg := testConfig(t, "systemd")
	run := newFakeRunner()
	sup := New(cfg, WithRunner(run))

	if err := sup.Logs(context.Background(), 50, true); err != nil {
		t.Fatalf("logs: %v", err)
	}
	if run.calls[0] != "journalctl -u void-uplink -n 50 -f" {
		t.Errorf("logs call = %q", run.calls[0])
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	sup := New(testConfig(t, "openrc"))
	ctx := context.Background()

	if err := sup.Install(ctx); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("install error = %v", err)
	}
	if err := sup.Start(ctx); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("start error = %v", err)
	}
	if _, err := sup.Status(ctx); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("status error = %v", err)
	}
	if err := sup.Install(ctx); !strings.Contains(err.Error(), "openrc") {
		t.Errorf("error should name the type: %v", err)
	}
}
