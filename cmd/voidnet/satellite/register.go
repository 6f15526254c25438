package satellitecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/overseer"
	"voidnet/internal/registration"
	"voidnet/internal/service"
)

func registerCmd() *cobra.Command {
	var (
		name        string
		overseerURL string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register this host as a satellite with the Overseer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if overseerURL != "" {
				cfg.Overseer.URL = overseerURL
			}
			if cfg.Registered() {
				return fmt.Errorf("already registered as %q, unregister first", cfg.Satellite.Name)
			}

			id := registration.DetectIdentity(name)
			if name == "" {
				fmt.Println(ui.InfoMsg("Using hostname as satellite name: %s", id.Name))
			}
			fmt.Println(ui.InfoMsg("Registering satellite %q with Overseer at %s", id.Name, cfg.Overseer.URL))

			reg := &registration.Registrar{
				Plane:   cmdutil.Client(cfg, ""),
				Service: service.New(cfg),
				Config:  cfg,
			}
			resp, err := reg.Register(cmd.Context(), id)
			if err != nil {
				if overseer.IsConflict(err) {
					return fmt.Errorf("name %q is already registered: choose another with --name or unregister the stale entry", id.Name)
				}
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Println(ui.SuccessMsg("Satellite registered"))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("Satellite ID", fmt.Sprintf("%d", resp.SatelliteID)),
				ui.KV("Name", id.Name),
				ui.KV("IP Address", id.IP),
				ui.KV("Config", cfg.FilePath()),
			))
			fmt.Println(ui.SuccessMsg("Uplink service installed and running"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Satellite name (default: hostname)")
	cmd.Flags().StringVarP(&overseerURL, "overseer-url", "u", "", "Overseer URL (default: from config)")
	return cmd
}
