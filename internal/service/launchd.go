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

// plistTemplate is rendered from config values only, so installing twice
// with unchanged config produces a byte-identical file.
const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.UplinkBin}}</string>
    </array>
    <key>WorkingDirectory</key>
    <string>{{.WorkingDir}}</string>
    <key>EnvironmentVariables</key>
    <dict>
        <key>OVERSEER_URL</key>
        <string>{{.OverseerURL}}</string>
        <key>SATELLITE_NAME</key>
        <string>{{.SatelliteName}}</string>
        <key>SATELLITE_IP</key>
        <string>{{.SatelliteIP}}</string>
        <key>OVERSEER_API_KEY</key>
        <string>{{.APIKey}}</string>
    </dict>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogFile}}</string>
    <key>StandardErrorPath</key>
    <string>{{.ErrLog}}</string>
</dict>
</plist>
`

type launchd struct {
	cfg   *config.Config
	run   Runner
	sleep func(time.Duration)
}

func (l *launchd) plistPath() string {
	return config.ExpandUser(l.cfg.Paths.PlistPath)
}

func (l *launchd) Install(ctx context.Context) error {
	tmpl, err := template.New("plist").Parse(plistTemplate)
	if err != nil {
		return fmt.Errorf("parse plist template: %w", err)
	}

	var sb strings.Builder
	err = tmpl.Execute(&sb, map[string]string{
		"Label":         l.cfg.Service.Name,
		"UplinkBin":     config.ExpandUser(l.cfg.Paths.UplinkBin),
		"WorkingDir":    config.ExpandUser(l.cfg.Paths.InstallDir),
		"OverseerURL":   l.cfg.Overseer.URL,
		"SatelliteName": l.cfg.Satellite.Name,
		"SatelliteIP":   l.cfg.Satellite.IP,
		"APIKey":        l.cfg.Satellite.APIKey,
		"LogFile":       l.cfg.Paths.LogFile,
		"ErrLog":        l.cfg.Paths.ErrLog,
	})
	if err != nil {
		return fmt.Errorf("render plist: %w", err)
	}

	path := l.plistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create launch agents dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}
	return nil
}

func (l *launchd) Start(ctx context.Context) error {
	if out, err := l.run.Run(ctx, "launchctl", "load", l.plistPath()); err != nil {
		return fmt.Errorf("launchctl load: %w: %s", err, out)
	}
	if out, err := l.run.Run(ctx, "launchctl", "start", l.cfg.Service.Name); err != nil {
		return fmt.Errorf("launchctl start: %w: %s", err, out)
	}
	return nil
}

// Stop unloads the job. A plain "launchctl stop" is not enough: KeepAlive
// would resurrect the process immediately.
func (l *launchd) Stop(ctx context.Context) error {
	if out, err := l.run.Run(ctx, "launchctl", "unload", l.plistPath()); err != nil {
		return fmt.Errorf("launchctl unload: %w: %s", err, out)
	}
	return nil
}

func (l *launchd) Restart(ctx context.Context) error {
	return restart(ctx, l, l.sleep)
}

func (l *launchd) Status(ctx context.Context) (Status, error) {
	out, err := l.run.Run(ctx, "launchctl", "list")
	if err != nil {
		return StatusUnknown, fmt.Errorf("launchctl list: %w", err)
	}
	if strings.Contains(out, l.cfg.Service.Name) {
		return StatusRunning, nil
	}
	return StatusStopped, nil
}

func (l *launchd) Logs(ctx context.Context, tail int, follow bool) error {
	args := []string{"-n", strconv.Itoa(tail)}
	if follow {
		args = append(args, "-f")
	}
	args = append(args, l.cfg.Paths.LogFile)
	return l.run.Stream(ctx, "tail", args...)
}
