package satellitecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/registration"
	"voidnet/internal/service"
)

func unregisterCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove this satellite from the Overseer and stop the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if err := cmdutil.RequireRegistered(cfg); err != nil {
				return err
			}

			if !yes {
				ok, err := ui.Confirm(
					fmt.Sprintf("Unregister satellite %q from the Overseer?", cfg.Satellite.Name),
					"use --yes to skip")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			reg := &registration.Registrar{
				Plane:   cmdutil.Client(cfg, ""),
				Service: service.New(cfg),
				Config:  cfg,
			}
			if err := reg.Unregister(cmd.Context()); err != nil {
				return fmt.Errorf("unregister failed: %w", err)
			}

			fmt.Println(ui.SuccessMsg("Satellite unregistered"))
			fmt.Println(ui.Muted("Run 'voidnet satellite register' to register again."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
