// Package satellitecmd implements "voidnet satellite": registration and
// local uplink service management.
package satellitecmd

import "github.com/spf13/cobra"

// Cmd returns the parent "voidnet satellite" command.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "satellite",
		Short: "Manage this host's satellite registration and agent service",
	}

	cmd.AddCommand(registerCmd())
	cmd.AddCommand(unregisterCmd())
	cmd.AddCommand(startCmd())
	cmd.AddCommand(stopCmd())
	cmd.AddCommand(restartCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(logsCmd())
	return cmd
}
