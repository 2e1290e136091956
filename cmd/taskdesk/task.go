package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/models"
)

type taskCreateOptions struct {
	id         string
	code       string
	taskType   string
	parentID   string
	subTaskIDs string
	status     string
	priority   int
	group      string
	due        string
	project    string
	assignees  []string
}

func newTaskCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create tasks and start work on them",
	}
	cmd.AddCommand(newTaskCreateCmd(cfg, jsonOutput), newTaskStartCmd(cfg, jsonOutput))
	return cmd
}

func newTaskCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &taskCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a story or task",
		Args:  requireAtLeastArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildTaskCreateRequest(cmd, opts, args)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", task.ID)
			})
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "explicit task id (e.g. td-0001)")
	cmd.Flags().StringVar(&opts.code, "tcode", "", "human task code")
	cmd.Flags().StringVarP(&opts.taskType, "type", "t", "", "story|task")
	cmd.Flags().StringVar(&opts.parentID, "parent", "", "parent story id")
	cmd.Flags().StringVar(&opts.subTaskIDs, "subtasks", "", "comma-separated subtask ids (stories only)")
	cmd.Flags().StringVar(&opts.status, "status", "", "open|in_progress")
	cmd.Flags().IntVarP(&opts.priority, "priority", "p", models.DefaultPriority, "priority 0-4")
	cmd.Flags().StringVar(&opts.group, "group", "", "group label")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.project, "project", "", "project id or code")
	cmd.Flags().StringSliceVarP(&opts.assignees, "assignee", "a", nil, "assignee id or username (repeatable)")
	return cmd
}

func buildTaskCreateRequest(cmd *cobra.Command, opts *taskCreateOptions, args []string) (api.TaskCreateRequest, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return api.TaskCreateRequest{}, errors.New("name is required")
	}
	req := api.TaskCreateRequest{
		ID:           strings.TrimSpace(opts.id),
		Code:         strings.TrimSpace(opts.code),
		Name:         name,
		ParentTaskID: strings.TrimSpace(opts.parentID),
		SubTaskIDs:   splitCommaList(opts.subTaskIDs),
		Group:        strings.TrimSpace(opts.group),
		DueDate:      strings.TrimSpace(opts.due),
		Project:      strings.TrimSpace(opts.project),
		Assignees:    opts.assignees,
	}
	if opts.taskType != "" {
		req.Type = &opts.taskType
	}
	if opts.status != "" {
		req.Status = &opts.status
	}
	if cmd.Flags().Changed("priority") {
		req.Priority = &opts.priority
	}
	return req, nil
}

func newTaskStartCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id> [<id>...]",
		Short: "Move open tasks to in_progress",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := string(models.StatusInProgress)
			return withClient(cfg, func(client *api.Client) error {
				updated := make([]models.Task, 0, len(args))
				for _, id := range args {
					task, err := client.UpdateTask(cmd.Context(), id, api.TaskUpdateRequest{Status: &status})
					if err != nil {
						return err
					}
					updated = append(updated, task)
				}
				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("%s\n", strings.Join(args, ","))
			})
		},
	}
}
