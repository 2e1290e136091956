package main

import (
	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/fixture"
)

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		dryRun bool
		dedupe string
	)

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Seed roles, users, projects and tasks from a YAML fixture (admin)",
		Args:  requireExactlyArgs(1, "fixture file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fixture.LoadFile(args[0])
			if err != nil {
				return err
			}
			req, err := f.Request()
			if err != nil {
				return err
			}
			req.DryRun = dryRun
			if cmd.Flags().Changed("dedupe") || req.Dedupe == "" {
				req.Dedupe = dedupe
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Import(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeImportSummary(resp)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and plan without writing")
	cmd.Flags().StringVar(&dedupe, "dedupe", "skip", "existing task ids: skip|error (overrides the fixture)")
	return cmd
}

func writeImportSummary(resp api.ImportResponse) error {
	prefix := ""
	if resp.DryRun {
		prefix = "dry run: "
	}
	if err := writePlain("%sroles: %d, users: %d, projects: %d, tasks created: %d, skipped: %d, errors: %d\n",
		prefix, resp.RolesApplied, resp.UsersCreated, resp.ProjectsCreated, resp.Created, resp.Skipped, resp.Errors); err != nil {
		return err
	}
	for _, message := range resp.Messages {
		if err := writePlain("  %s\n", dim(message)); err != nil {
			return err
		}
	}
	return nil
}
