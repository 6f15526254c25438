// Package cmdutil holds helpers shared by the voidnet subcommands.
package cmdutil

import (
	"errors"
	"fmt"

	"voidnet/config"
	"voidnet/internal/overseer"
)

// ErrNotRegistered is returned when a command needs a satellite credential
// and none is configured.
var ErrNotRegistered = errors.New("no satellite registered, run 'voidnet satellite register' first")

// LoadConfig loads the on-disk configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Client builds an Overseer client from the config. apiKey overrides the
// stored credential when non-empty.
func Client(cfg *config.Config, apiKey string) *overseer.Client {
	key := apiKey
	if key == "" {
		key = cfg.Satellite.APIKey
	}
	return overseer.New(cfg.Overseer.URL, key)
}

// RequireRegistered fails when this host holds no satellite credential.
func RequireRegistered(cfg *config.Config) error {
	if !cfg.Registered() {
		return ErrNotRegistered
	}
	return nil
}
