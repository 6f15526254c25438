package systemcmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/config"
	"voidnet/internal/service"
)

func uninstallCmd() *cobra.Command {
	var (
		yes   bool
		purge bool
	)

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Stop the agent and remove voidnet from this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}

			if !yes {
				ok, err := ui.Confirm(
					"This stops the uplink service and removes its service definition. Continue?",
					"use --yes to skip")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			sup := service.New(cfg)
			if err := sup.Stop(cmd.Context()); err != nil && !errors.Is(err, service.ErrUnsupportedPlatform) {
				fmt.Println(ui.WarnMsg("Could not stop service: %v", err))
			}

			svcFile := config.ExpandUser(cfg.ServiceFilePath())
			if err := os.Remove(svcFile); err == nil {
				fmt.Println(ui.InfoMsg("Removed service file %s", svcFile))
			} else if !errors.Is(err, os.ErrNotExist) {
				fmt.Println(ui.WarnMsg("Could not remove %s: %v", svcFile, err))
			}

			if purge {
				installDir := config.ExpandUser(cfg.Paths.InstallDir)
				if err := os.RemoveAll(installDir); err != nil {
					fmt.Println(ui.WarnMsg("Could not remove %s: %v", installDir, err))
				} else {
					fmt.Println(ui.InfoMsg("Removed %s", installDir))
				}
				if err := os.Remove(cfg.FilePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
					fmt.Println(ui.WarnMsg("Could not remove config: %v", err))
				}
			}

			fmt.Println(ui.SuccessMsg("voidnet uninstalled"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	cmd.Flags().BoolVar(&purge, "purge", false, "Also remove the install directory and config file")
	return cmd
}
