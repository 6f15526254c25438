package capsulecmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
)

func deployCmd(apiKey *string) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <capsule-id>",
		Short: "Deploy a capsule to its satellite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := capsuleID(args[0])
			if err != nil {
				return fmt.Errorf("invalid capsule ID %q", args[0])
			}

			cl, _, err := client(*apiKey)
			if err != nil {
				return err
			}

			fmt.Println(ui.InfoMsg("Deploying capsule %d...", id))
			resp, err := cl.DeployCapsule(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("deploy capsule %d: %w", id, err)
			}

			fmt.Println(ui.SuccessMsg("Capsule %d deployed", id))
			if resp.Message != "" {
				fmt.Println(ui.Muted(resp.Message))
			}
			if out := strings.TrimSpace(resp.Output); out != "" {
				fmt.Println(ui.Muted(out))
			}
			return nil
		},
	}
}
