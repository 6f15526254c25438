package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"voidnet/config"
)

const unitTemplate = `[Unit]
Description=Void Uplink - Satellite Agent
After=network.target docker.service

[Service]
Type=simple
User={{.User}}
WorkingDirectory={{.WorkingDir}}
Environment="OVERSEER_URL={{.OverseerURL}}"
Environment="SATELLITE_NAME={{.SatelliteName}}"
Environment="SATELLITE_IP={{.SatelliteIP}}"
Environment="OVERSEER_API_KEY={{.APIKey}}"
ExecStart={{.UplinkBin}}
Restart=always
RestartSec=10

[Install]
WantedBy=multi-user.target
`

type systemd struct {
	cfg   *config.Config
	run   Runner
	sleep func(time.Duration)
}

func (s *systemd) unitPath() string {
	return s.cfg.Paths.UnitPath
}

func (s *systemd) Install(ctx context.Context) error {
	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		return fmt.Errorf("parse unit template: %w", err)
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "root"
	}

	var sb strings.Builder
	err = tmpl.Execute(&sb, map[string]string{
		"User":          user,
		"WorkingDir":    config.ExpandUser(s.cfg.Paths.InstallDir),
		"OverseerURL":   s.cfg.Overseer.URL,
		"SatelliteName": s.cfg.Satellite.Name,
		"SatelliteIP":   s.cfg.Satellite.IP,
		"APIKey":        s.cfg.Satellite.APIKey,
		"UplinkBin":     config.ExpandUser(s.cfg.Paths.UplinkBin),
	})
	if err != nil {
		return fmt.Errorf("render unit: %w", err)
	}

	path := s.unitPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create unit dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	if out, err := s.run.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w: %s", err, out)
	}
	return nil
}

func (s *systemd) Start(ctx context.Context) error {
	if out, err := s.run.Run(ctx, "systemctl", "enable", s.cfg.Service.Name); err != nil {
		return fmt.Errorf("systemctl enable: %w: %s", err, out)
	}
	if out, err := s.run.Run(ctx, "systemctl", "start", s.cfg.Service.Name); err != nil {
		return fmt.Errorf("systemctl start: %w: %s", err, out)
	}
	return nil
}

func (s *systemd) Stop(ctx context.Context) error {
	if out, err := s.run.Run(ctx, "systemctl", "stop", s.cfg.Service.Name); err != nil {
		return fmt.Errorf("systemctl stop: %w: %s", err, out)
	}
	return nil
}

func (s *systemd) Restart(ctx context.Context) error {
	return restart(ctx, s, s.sleep)
}

// Status maps `systemctl is-active` output. The command exits nonzero for
// anything but "active", so the output is consulted before the error.
func (s *systemd) Status(ctx context.Context) (Status, error) {
	out, err := s.run.Run(ctx, "systemctl", "is-active", s.cfg.Service.Name)
	switch strings.TrimSpace(out) {
	case "active", "activating":
		return StatusRunning, nil
	case "inactive", "failed", "deactivating":
		return StatusStopped, nil
	}
	if err != nil {
		return StatusUnknown, fmt.Errorf("systemctl is-active: %w", err)
	}
	return StatusUnknown, nil
}

func (s *systemd) Logs(ctx context.Context, tail int, follow bool) error {
	args := []string{"-u", s.cfg.Service.Name, "-n", strconv.Itoa(tail)}
	if follow {
		args = append(args, "-f")
	}
	return s.run.Stream(ctx, "journalctl", args...)
}
