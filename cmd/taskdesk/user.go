package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	internalauth "taskdesk/internal/auth"
	"taskdesk/internal/config"
)

var stdin io.Reader = os.Stdin

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users (admin)",
	}
	cmd.AddCommand(newUserCreateCmd(cfg, jsonOutput), newUserListCmd(cfg, jsonOutput))
	return cmd
}

func newUserCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		role          string
		displayName   string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user with a role",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := internalauth.NormalizeUsername(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(role) == "" {
				return fmt.Errorf("--role is required")
			}

			req := api.UserCreateRequest{Username: username, DisplayName: displayName, Role: role}
			if passwordStdin {
				passwordBytes, err := io.ReadAll(stdin)
				if err != nil {
					return err
				}
				req.Password = strings.TrimSpace(string(passwordBytes))
				if err := internalauth.ValidatePassword(req.Password); err != nil {
					return err
				}
			}

			return withClient(cfg, func(client *api.Client) error {
				created, err := client.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created user %s (%s) with role %s\n", created.Username, created.ID, created.Role.Name)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role name (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "display name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read a login password from stdin")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(users), "users": users})
				}
				if len(users) == 0 {
					return writePlain("no users configured\n")
				}
				if err := writePlain("USERNAME\tROLE\tSTATUS\tID\n"); err != nil {
					return err
				}
				for _, user := range users {
					status := "enabled"
					if user.Disabled {
						status = "disabled"
					}
					if err := writePlain("%s\t%s\t%s\t%s\n", user.Username, user.Role.Name, status, user.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
