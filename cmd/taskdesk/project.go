package main

import (
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

func newProjectCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectCreateCmd(cfg, jsonOutput), newProjectListCmd(cfg, jsonOutput))
	return cmd
}

func newProjectCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var lead string
	cmd := &cobra.Command{
		Use:   "create <code> <name>",
		Short: "Create a project",
		Args:  requireAtLeastArgs(2, "code and name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ProjectCreateRequest{
				Code:        args[0],
				Name:        strings.Join(args[1:], " "),
				ProjectLead: lead,
			}
			return withClient(cfg, func(client *api.Client) error {
				project, err := client.CreateProject(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(project)
				}
				return writePlain("created project %s (%s)\n", project.Code, project.ID)
			})
		},
	}
	cmd.Flags().StringVar(&lead, "lead", "", "project lead id or username")
	return cmd
}

func newProjectListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				projects, err := client.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(projects)
				}
				if len(projects) == 0 {
					return writePlain("no projects\n")
				}
				if err := writePlain("CODE\tNAME\tLEAD\tID\n"); err != nil {
					return err
				}
				for _, project := range projects {
					if err := writePlain("%s\t%s\t%s\t%s\n", project.Code, project.Name, project.ProjectLeadID, project.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
