package capsulecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
)

func statusCmd(apiKey *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <capsule-id>",
		Short: "Show one capsule",
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

			cap, err := cl.GetCapsule(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get capsule %d: %w", id, err)
			}

			branch := cap.GitBranch
			if branch == "" {
				branch = "main"
			}
			fmt.Print(ui.KeyValues("  ",
				ui.KV("Name", cap.Name),
				ui.KV("ID", fmt.Sprintf("%d", cap.ID)),
				ui.KV("Status", ui.StatusText(cap.Status)),
				ui.KV("Satellite", cap.SatelliteName),
				ui.KV("Satellite Hostname", cap.SatelliteHostname),
				ui.KV("Git URL", cap.GitURL),
				ui.KV("Git Branch", branch),
				ui.KV("Created", cap.CreatedAt),
			))
			return nil
		},
	}
}
