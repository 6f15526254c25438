// Package systemcmd implements "voidnet system": host setup and removal.
package systemcmd

import "github.com/spf13/cobra"

// Cmd returns the parent "voidnet system" command.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Set up or remove voidnet on this host",
	}

	cmd.AddCommand(initCmd())
	cmd.AddCommand(uninstallCmd())
	return cmd
}
