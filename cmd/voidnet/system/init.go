package systemcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/config"
)

func initCmd() *cobra.Command {
	var overseerURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize voidnet on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}

			url := overseerURL
			if url == "" {
				url, err = ui.Prompt("Overseer URL", cfg.Overseer.URL, "use --overseer-url")
				if err != nil {
					return err
				}
				if url == "" {
					url = cfg.Overseer.URL
				}
			}
			cfg.Overseer.URL = url

			installDir := config.ExpandUser(cfg.Paths.InstallDir)
			if err := os.MkdirAll(installDir, 0o755); err != nil {
				return fmt.Errorf("create install dir: %w", err)
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("voidnet initialized"))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("Overseer URL", cfg.Overseer.URL),
				ui.KV("Install Dir", installDir),
				ui.KV("Config", cfg.FilePath()),
			))
			fmt.Println(ui.Muted("Run 'voidnet satellite register' to register this host."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&overseerURL, "overseer-url", "u", "", "Overseer URL")
	return cmd
}
