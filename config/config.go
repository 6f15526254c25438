// Package config handles the on-disk VoidNet configuration.
//
// Config is stored at ~/.voidnet/config.yaml (override with VOIDNET_CONFIG).
// Loading merges the file over built-in defaults field by field, so a
// partially written file is always usable. Top-level sections this version
// does not know about are kept as-is and written back on Save, so an older
// binary never destroys a newer binary's settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overseer holds the control-plane endpoint.
type Overseer struct {
	URL string `yaml:"url"`
}

// Satellite is the locally persisted identity of this host, filled in by
// registration. APIKey is the credential issued by the Overseer; it is
// written once at registration and cleared on unregistration.
type Satellite struct {
	Name     string `yaml:"name,omitempty"`
	IP       string `yaml:"ip,omitempty"`
	Hostname string `yaml:"hostname,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// Paths locates everything voidnet writes on this host.
type Paths struct {
	InstallDir string `yaml:"install_dir"`
	UplinkBin  string `yaml:"uplink_bin"`
	LogFile    string `yaml:"log_file"`
	ErrLog     string `yaml:"err_log"`
	PlistPath  string `yaml:"plist_path"`
	UnitPath   string `yaml:"unit_path"`
}

// Service names the host service manager backend and the service identity
// registered with it.
type Service struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// Config is the full on-disk configuration.
type Config struct {
	Overseer  Overseer  `yaml:"overseer"`
	Satellite Satellite `yaml:"satellite"`
	Paths     Paths     `yaml:"paths"`
	Service   Service   `yaml:"service"`

	// Extra preserves unknown top-level sections verbatim.
	Extra map[string]any `yaml:",inline"`

	path string
}

const (
	defaultOverseerURL = "http://localhost:8000"

	launchdLabel = "com.void.uplink"
	systemdUnit  = "void-uplink"
)

// Path returns the config file location, honoring VOIDNET_CONFIG.
func Path() string {
	if p := os.Getenv("VOIDNET_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".voidnet", "config.yaml")
	}
	return filepath.Join(home, ".voidnet", "config.yaml")
}

// Defaults returns the built-in configuration for the current OS.
func Defaults() *Config {
	home, _ := os.UserHomeDir()
	cfg := &Config{
		Overseer: Overseer{URL: defaultOverseerURL},
		Paths: Paths{
			InstallDir: filepath.Join(home, ".voidnet"),
			UplinkBin:  "/usr/local/bin/void-uplink",
			LogFile:    "/tmp/void-uplink.log",
			ErrLog:     "/tmp/void-uplink.err",
			PlistPath:  filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist"),
			UnitPath:   "/etc/systemd/system/" + systemdUnit + ".service",
		},
		Extra: make(map[string]any),
	}
	if runtime.GOOS == "darwin" {
		cfg.Service = Service{Type: "launchd", Name: launchdLabel}
	} else {
		cfg.Service = Service{Type: "systemd", Name: systemdUnit}
	}
	return cfg
}

// Load reads the config file at Path. A missing file yields the defaults
// (not an error). Fields absent from the file keep their default values.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file from an explicit location.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.merge(&loaded)
	return cfg, nil
}

// merge overlays non-empty fields from loaded onto the defaults.
func (c *Config) merge(loaded *Config) {
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&c.Overseer.URL, loaded.Overseer.URL)
	overlay(&c.Satellite.Name, loaded.Satellite.Name)
	overlay(&c.Satellite.IP, loaded.Satellite.IP)
	overlay(&c.Satellite.Hostname, loaded.Satellite.Hostname)
	overlay(&c.Satellite.APIKey, loaded.Satellite.APIKey)
	overlay(&c.Paths.InstallDir, loaded.Paths.InstallDir)
	overlay(&c.Paths.UplinkBin, loaded.Paths.UplinkBin)
	overlay(&c.Paths.LogFile, loaded.Paths.LogFile)
	overlay(&c.Paths.ErrLog, loaded.Paths.ErrLog)
	overlay(&c.Paths.PlistPath, loaded.Paths.PlistPath)
	overlay(&c.Paths.UnitPath, loaded.Paths.UnitPath)
	overlay(&c.Service.Type, loaded.Service.Type)
	overlay(&c.Service.Name, loaded.Service.Name)
	for k, v := range loaded.Extra {
		c.Extra[k] = v
	}
}

// Save writes the config to its load location, creating directories as
// needed. Mode 0600: the file carries the satellite credential.
func (c *Config) Save() error {
	p := c.path
	if p == "" {
		p = Path()
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// FilePath reports where this config was loaded from (or will be saved to).
func (c *Config) FilePath() string {
	if c.path != "" {
		return c.path
	}
	return Path()
}

// Registered reports whether this host holds a satellite credential.
func (c *Config) Registered() bool {
	return c.Satellite.APIKey != ""
}

// ClearSatellite drops the local identity and credential, returning the
// host to the unregistered state.
func (c *Config) ClearSatellite() {
	c.Satellite = Satellite{}
}

// ServiceFilePath returns the generated service definition location for
// the configured backend.
func (c *Config) ServiceFilePath() string {
	if c.Service.Type == "launchd" {
		return c.Paths.PlistPath
	}
	return c.Paths.UnitPath
}

// ExpandUser resolves a leading "~/" against the current home directory.
func ExpandUser(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
