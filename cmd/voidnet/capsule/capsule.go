// Package capsulecmd implements "voidnet capsule": capsule lifecycle
// against the Overseer.
package capsulecmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/config"
	"voidnet/internal/overseer"
)

// Cmd returns the parent "voidnet capsule" command.
func Cmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "capsule",
		Short: "Manage capsules on the Overseer",
	}
	cmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (default: satellite credential from config)")

	cmd.AddCommand(listCmd(&apiKey))
	cmd.AddCommand(statusCmd(&apiKey))
	cmd.AddCommand(createCmd(&apiKey))
	cmd.AddCommand(deployCmd(&apiKey))
	cmd.AddCommand(stopCmd(&apiKey))
	cmd.AddCommand(logsCmd(&apiKey))
	return cmd
}

// client loads config and builds an Overseer client with the effective key.
func client(apiKey string) (*overseer.Client, *config.Config, error) {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cmdutil.Client(cfg, apiKey), cfg, nil
}

// capsuleID parses the positional capsule ID argument.
func capsuleID(arg string) (int64, error) {
	return strconv.ParseInt(arg, 10, 64)
}
