package satellitecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/service"
)

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the uplink agent service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if err := cmdutil.RequireRegistered(cfg); err != nil {
				return err
			}
			if err := service.New(cfg).Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Uplink service started"))
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the uplink agent service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if err := service.New(cfg).Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Uplink service stopped"))
			return nil
		},
	}
}

func restartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the uplink agent service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if err := service.New(cfg).Restart(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Uplink service restarted"))
			return nil
		},
	}
}

func logsCmd() *cobra.Command {
	var (
		tail   int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View uplink agent service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			return service.New(cfg).Logs(cmd.Context(), tail, follow)
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 100, "Number of lines")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow logs")
	return cmd
}
