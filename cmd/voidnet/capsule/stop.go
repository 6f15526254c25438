package capsulecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
)

func stopCmd(apiKey *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "stop <capsule-id>",
		Short: "Stop a capsule's containers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := capsuleID(args[0])
			if err != nil {
				return fmt.Errorf("invalid capsule ID %q", args[0])
			}

			if !yes {
				ok, err := ui.Confirm(
					fmt.Sprintf("Stop capsule %d?", id),
					"use --yes to skip")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			cl, _, err := client(*apiKey)
			if err != nil {
				return err
			}

			resp, err := cl.StopCapsule(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("stop capsule %d: %w", id, err)
			}

			fmt.Println(ui.SuccessMsg("Capsule %d stopped", id))
			if resp.Message != "" {
				fmt.Println(ui.Muted(resp.Message))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
