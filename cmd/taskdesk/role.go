package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

func newRoleCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles (admin)",
	}
	cmd.AddCommand(newRoleSetCmd(cfg, jsonOutput))
	return cmd
}

func newRoleSetCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> [<permission>...]",
		Short: "Create or replace a role's permissions",
		Long: "Create or replace a role. Permissions: mark-complete-task, " +
			"first-verify-task, second-verify-task. A role without permissions is allowed.",
		Args: requireAtLeastArgs(1, "role name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var permissions []string
			for _, arg := range args[1:] {
				permissions = append(permissions, splitCommaList(arg)...)
			}
			req := api.RoleRequest{Name: args[0], Permissions: permissions}
			return withClient(cfg, func(client *api.Client) error {
				role, err := client.UpsertRole(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(role)
				}
				granted := make([]string, 0, len(role.Permissions))
				for permission := range role.Permissions {
					granted = append(granted, string(permission))
				}
				sort.Strings(granted)
				if len(granted) == 0 {
					granted = []string{"none"}
				}
				return writePlain("role %s: %s\n", role.Name, strings.Join(granted, ", "))
			})
		},
	}
}
