package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdesk/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Taskdesk tracks stories and tasks through completion and two-step verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newMeCmd(cfg, &jsonOutput),
		newTreeCmd(cfg, &jsonOutput),
		newCompleteCmd(cfg, &jsonOutput),
		newVerifyCmd(cfg, &jsonOutput),
		newTaskCmd(cfg, &jsonOutput),
		newProjectCmd(cfg, &jsonOutput),
		newUserCmd(cfg, &jsonOutput),
		newRoleCmd(cfg, &jsonOutput),
		newImportCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}
