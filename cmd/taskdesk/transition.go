package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/bulk"
	"taskdesk/internal/config"
	"taskdesk/internal/guard"
	"taskdesk/internal/hierarchy"
	"taskdesk/internal/models"
	"taskdesk/internal/search"
	"taskdesk/internal/selection"
	"taskdesk/internal/view"
)

var errNoActor = errors.New("no acting user: set TASKDESK_USER or run `taskdesk config set user <username>`")

// errNothingAttempted reports that no request was sent because no selected
// task could take the transition.
var errNothingAttempted = errors.New("nothing was attempted: no selected task is eligible")

type transitionCmdOptions struct {
	project  string
	matching string
}

type transitionOutput struct {
	Warning string       `json:"warning,omitempty"`
	Outcome bulk.Outcome `json:"outcome"`
}

func newCompleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return newTransitionCmd(cfg, jsonOutput, guard.Complete, "complete", "Mark selected in-progress tasks complete")
}

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Record first or second verification of completed tasks",
	}
	cmd.AddCommand(
		newTransitionCmd(cfg, jsonOutput, guard.FirstVerify, "first", "First-verify selected completed tasks"),
		newTransitionCmd(cfg, jsonOutput, guard.SecondVerify, "second", "Second-verify selected first-verified tasks"),
	)
	return cmd
}

func newTransitionCmd(cfg *config.Config, jsonOutput *bool, kind guard.Transition, name, short string) *cobra.Command {
	opts := &transitionCmdOptions{}
	cmd := &cobra.Command{
		Use:   name + " [<row-key>...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && strings.TrimSpace(opts.matching) == "" {
				return errors.New("at least one row key or --matching is required")
			}
			return withClient(cfg, func(client *api.Client) error {
				return runTransition(cmd.Context(), cfg, client, kind, opts, args, *jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&opts.project, "project", "", "project id or code to load tasks from")
	cmd.Flags().StringVar(&opts.matching, "matching", "", "also select every row whose own fields match this query")
	return cmd
}

func runTransition(ctx context.Context, cfg *config.Config, client *api.Client, kind guard.Transition, opts *transitionCmdOptions, keys []string, jsonOutput bool) error {
	actor, ok, err := currentUser(ctx, client)
	if err != nil {
		return err
	}
	if !ok {
		return errNoActor
	}
	viewCfg, err := viewConfig(cfg)
	if err != nil {
		return err
	}

	tasks, err := client.ListTasks(ctx, api.TaskListQuery{Project: opts.project})
	if err != nil {
		return err
	}
	tree := hierarchy.Build(tasks, hierarchy.SortOptions{})

	proposed := append(trimKeys(keys), matchingKeys(tree, opts.matching, viewCfg.SearchFields)...)
	state, resolved := view.New().Propose(selection.NewSet(proposed...))
	selected, unknown := view.SelectedTasks(tree, state)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown row key(s): %s", strings.Join(unknown, ", "))
	}

	coordinator := bulk.NewCoordinator(slog.Default().With("component", "bulk"))
	outcome, err := coordinator.Execute(ctx, selected, kind, actor, transitionRequest(client))
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := writeJSON(transitionOutput{Warning: resolved.Warning(), Outcome: outcome}); err != nil {
			return err
		}
	} else {
		notices := outcome.Notices
		if warning := resolved.Warning(); warning != "" {
			notices = append([]bulk.Notice{{Level: bulk.LevelWarning, Text: warning}}, notices...)
		}
		if err := writeNotices(notices); err != nil {
			return err
		}
	}

	switch outcome.Failure {
	case bulk.FailureTransport:
		return fmt.Errorf("%s request failed", kind)
	case bulk.FailurePrecondition:
		return errNothingAttempted
	}
	return nil
}

// transitionRequest sends the coordinator's batch as one API call.
func transitionRequest(client *api.Client) bulk.RequestFunc {
	return func(ctx context.Context, req bulk.Request) (models.BulkResult, error) {
		body := api.NewTransitionRequest(req.Transition, req.TaskIDs, req.ActorID)
		body.RequireFirstVerified = req.RequireFirstVerified
		return client.SendTransition(ctx, req.Transition, body)
	}
}

func matchingKeys(tree hierarchy.Tree, query string, fields []search.FieldPath) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if len(fields) == 0 {
		fields = search.DefaultFields
	}
	result := search.Evaluate(tree, query, fields)
	var keys []string
	tree.Walk(func(node *hierarchy.Node, _ int) {
		if result.Matches[node.Key].SelfMatch {
			keys = append(keys, node.Key)
		}
	})
	return keys
}

func trimKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			out = append(out, key)
		}
	}
	return out
}
