package main

import (
	"fmt"
	"os"

	capsulecmd "voidnet/cmd/voidnet/capsule"
	satellitecmd "voidnet/cmd/voidnet/satellite"
	systemcmd "voidnet/cmd/voidnet/system"
	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/logging"
	"voidnet/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug         bool
		noInteraction bool
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "voidnet",
		Short:         "Satellite registration and capsule deployment",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}
			ui.ConfigureInteraction(noInteraction)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noInteraction, "no-interaction", false, "Never prompt; fail where input would be required")

	root.AddCommand(satellitecmd.Cmd())
	root.AddCommand(capsulecmd.Cmd())
	root.AddCommand(systemcmd.Cmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
