package capsulecmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/compose"
	"voidnet/internal/overseer"
)

func createCmd(apiKey *string) *cobra.Command {
	var (
		name        string
		satelliteID int64
		gitURL      string
		gitBranch   string
		composePath string
		rust        bool
		opencode    bool
		gitUser     string
		gitSSHKey   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a capsule from a compose descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(composePath)
			if err != nil {
				return fmt.Errorf("read compose file: %w", err)
			}

			issues, err := compose.Validate(cmd.Context(), data)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				fmt.Println(ui.ErrorMsg("Invalid compose descriptor:"))
				for _, issue := range issues {
					fmt.Println("  " + ui.ErrorMsg("%s", issue))
				}
				return fmt.Errorf("%d validation issue(s)", len(issues))
			}
			fmt.Println(ui.SuccessMsg("Compose descriptor is valid"))

			sshKey := gitSSHKey
			if sshKey != "" {
				if keyData, err := os.ReadFile(sshKey); err == nil {
					sshKey = string(keyData)
				}
			}

			cl, _, err := client(*apiKey)
			if err != nil {
				return err
			}

			cap, err := cl.CreateCapsule(cmd.Context(), overseer.CreateCapsuleRequest{
				Name:            name,
				SatelliteID:     satelliteID,
				GitURL:          gitURL,
				GitBranch:       gitBranch,
				ComposeFile:     string(data),
				RustSupport:     rust,
				OpencodeSupport: opencode,
				GitUser:         gitUser,
				GitSSHKey:       sshKey,
			})
			if err != nil {
				return fmt.Errorf("create capsule: %w", err)
			}

			fmt.Println(ui.SuccessMsg("Capsule %q created with ID %d", cap.Name, cap.ID))
			fmt.Println(ui.Muted(fmt.Sprintf("Deploy it with: voidnet capsule deploy %d", cap.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Capsule name")
	cmd.Flags().Int64VarP(&satelliteID, "satellite-id", "s", 0, "Satellite to deploy to")
	cmd.Flags().StringVar(&gitURL, "git-url", "", "Git repository URL")
	cmd.Flags().StringVar(&gitBranch, "git-branch", "", "Git branch (default: main)")
	cmd.Flags().StringVarP(&composePath, "file", "f", "docker-compose.yml", "Compose descriptor path")
	cmd.Flags().BoolVar(&rust, "rust", false, "Enable Rust toolchain support")
	cmd.Flags().BoolVar(&opencode, "opencode", false, "Enable OpenCode support")
	cmd.Flags().StringVar(&gitUser, "git-user", "", "Git username for commits")
	cmd.Flags().StringVar(&gitSSHKey, "git-ssh-key", "", "SSH key (path or literal) for private repos")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("satellite-id")
	return cmd
}
