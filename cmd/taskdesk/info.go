package main

import (
	"sort"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database and workflow counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Info(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"db_path": cfg.DBPath, "info": resp})
				}

				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("auth_required: %t\n", resp.AuthRequired)
				_ = writePlain("projects: %d\n", resp.ProjectCount)
				_ = writePlain("total_tasks: %d\n", resp.TotalTasks)

				statuses := make([]string, 0, len(resp.TaskCounts))
				for status := range resp.TaskCounts {
					statuses = append(statuses, status)
				}
				sort.Strings(statuses)
				for _, status := range statuses {
					_ = writePlain("  %s: %d\n", status, resp.TaskCounts[status])
				}
				return nil
			})
		},
	}
}
