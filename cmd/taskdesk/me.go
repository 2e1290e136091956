package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

func newMeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the acting user and their permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				me, err := client.Me(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(me)
				}
				if me.User == nil {
					return errNoActor
				}

				permissions := make([]string, 0, len(me.User.Role.Permissions))
				for permission := range me.User.Role.Permissions {
					permissions = append(permissions, string(permission))
				}
				sort.Strings(permissions)

				_ = writePlain("user: %s (%s)\n", me.User.Username, me.User.ID)
				if me.User.DisplayName != "" {
					_ = writePlain("name: %s\n", me.User.DisplayName)
				}
				_ = writePlain("role: %s\n", me.User.Role.Name)
				return writePlain("permissions: %s\n", strings.Join(permissions, ", "))
			})
		},
	}
}
