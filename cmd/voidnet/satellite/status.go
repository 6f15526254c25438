package satellitecmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"voidnet/cmd/voidnet/cmdutil"
	"voidnet/cmd/voidnet/ui"
	"voidnet/internal/service"
)

const localAgentHealthURL = "http://localhost:8001/health"

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show satellite service and agent health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig()
			if err != nil {
				return err
			}
			if err := cmdutil.RequireRegistered(cfg); err != nil {
				return err
			}

			svcStatus, err := service.New(cfg).Status(cmd.Context())
			if err != nil {
				svcStatus = service.StatusUnknown
			}

			health, containers := probeAgent()

			pairs := []ui.Pair{
				ui.KV("Satellite Name", cfg.Satellite.Name),
				ui.KV("Service Status", ui.StatusText(string(svcStatus))),
				ui.KV("Agent Health", ui.StatusText(health)),
			}
			if containers >= 0 {
				pairs = append(pairs, ui.KV("Running Containers", fmt.Sprintf("%d", containers)))
			}
			fmt.Print(ui.KeyValues("  ", pairs...))
			return nil
		},
	}
}

// probeAgent queries the local agent's health endpoint. Unreachable is a
// reportable state, not an error. containers is -1 when unknown.
func probeAgent() (status string, containers int) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(localAgentHealthURL)
	if err != nil {
		return "unreachable", -1
	}
	defer resp.Body.Close()

	var health struct {
		Status            string `json:"status"`
		RunningContainers int    `json:"running_containers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "unknown", -1
	}
	if health.Status == "" {
		return "unknown", -1
	}
	return health.Status, health.RunningContainers
}
