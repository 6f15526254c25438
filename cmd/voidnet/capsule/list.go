package capsulecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
)

func listCmd(apiKey *string) *cobra.Command {
	var satelliteID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List capsules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, _, err := client(*apiKey)
			if err != nil {
				return err
			}

			capsules, err := cl.ListCapsules(cmd.Context())
			if err != nil {
				return fmt.Errorf("list capsules: %w", err)
			}

			rows := make([][]string, 0, len(capsules))
			for _, cap := range capsules {
				if satelliteID != 0 && cap.SatelliteID != satelliteID {
					continue
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", cap.ID),
					cap.Name,
					ui.StatusText(cap.Status),
					cap.SatelliteName,
					cap.GitURL,
				})
			}

			if len(rows) == 0 {
				fmt.Println(ui.Muted("No capsules found."))
				return nil
			}
			fmt.Println(ui.Table([]string{"ID", "Name", "Status", "Satellite", "Git URL"}, rows))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&satelliteID, "satellite-id", "s", 0, "Filter by satellite ID")
	return cmd
}
