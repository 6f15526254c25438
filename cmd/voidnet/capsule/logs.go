package capsulecmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
)

func logsCmd(apiKey *string) *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs <capsule-id>",
		Short: "Fetch logs from a capsule's containers",
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

			resp, err := cl.CapsuleLogs(cmd.Context(), id, tail)
			if err != nil {
				return fmt.Errorf("fetch logs for capsule %d: %w", id, err)
			}
			if len(resp.Logs) == 0 {
				fmt.Println(ui.Muted("No logs available for this capsule."))
				return nil
			}

			names := make([]string, 0, len(resp.Logs))
			for name := range resp.Logs {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Println(ui.Accent(name) + ":")
				fmt.Println(resp.Logs[name])
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 100, "Number of lines per container")
	return cmd
}
