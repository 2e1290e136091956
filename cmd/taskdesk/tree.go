package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/hierarchy"
	"taskdesk/internal/models"
	"taskdesk/internal/search"
	"taskdesk/internal/view"
)

type treeCmdOptions struct {
	search    string
	column    string
	sortKey   string
	desc      bool
	project   string
	statuses  string
	assignee  string
	expand    []string
	expandAll bool
}

type treeOutput struct {
	Actor    string     `json:"actor,omitempty"`
	Filtered bool       `json:"filtered"`
	Total    int        `json:"total"`
	Rows     []view.Row `json:"rows"`
}

func newTreeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &treeCmdOptions{}
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show stories and tasks as a tree with workflow actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				return runTree(cmd, cfg, opts, *jsonOutput, client)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "global search over the configured fields")
	cmd.Flags().StringVar(&opts.column, "column", "", "column search as field=text (e.g. project.name=finance)")
	cmd.Flags().StringVar(&opts.sortKey, "sort", "", "root order: name|code|status|priority|due")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&opts.project, "project", "", "project id or code")
	cmd.Flags().StringVar(&opts.statuses, "status", "", "comma-separated statuses")
	cmd.Flags().StringVar(&opts.assignee, "assignee", "", "assignee id or username")
	cmd.Flags().StringSliceVar(&opts.expand, "expand", nil, "toggle expansion of root row keys")
	cmd.Flags().BoolVar(&opts.expandAll, "expand-all", false, "expand every story")
	return cmd
}

func runTree(cmd *cobra.Command, cfg *config.Config, opts *treeCmdOptions, jsonOutput bool, client *api.Client) error {
	ctx := cmd.Context()
	viewCfg, err := viewConfig(cfg)
	if err != nil {
		return err
	}
	sortOpts, err := opts.sortOptions(cmd, cfg)
	if err != nil {
		return err
	}

	actor, _, err := currentUser(ctx, client)
	if err != nil {
		return err
	}
	tasks, err := client.ListTasks(ctx, api.TaskListQuery{
		Project:  opts.project,
		Statuses: splitCommaList(opts.statuses),
		Assignee: opts.assignee,
	})
	if err != nil {
		return err
	}

	state, err := opts.state(tasks, sortOpts, viewCfg)
	if err != nil {
		return err
	}
	snap := view.Derive(tasks, state, actor, viewCfg)

	if jsonOutput {
		return writeJSON(treeOutput{Actor: actor.Username, Filtered: snap.Search.Filtered, Total: snap.Tree.Count(), Rows: snap.Rows})
	}
	return writeRows(snap.Rows)
}

func (o *treeCmdOptions) sortOptions(cmd *cobra.Command, cfg *config.Config) (hierarchy.SortOptions, error) {
	opts, err := cfg.View.SortOptions()
	if err != nil {
		return hierarchy.SortOptions{}, err
	}
	if cmd.Flags().Changed("sort") {
		if opts.Key, err = hierarchy.ParseSortKey(o.sortKey); err != nil {
			return hierarchy.SortOptions{}, err
		}
	}
	if cmd.Flags().Changed("desc") {
		opts.Desc = o.desc
	}
	return opts, nil
}

// state builds the table state: sort, then the live query with its
// auto-expansion, then explicit expansion toggles.
func (o *treeCmdOptions) state(tasks []models.Task, sortOpts hierarchy.SortOptions, viewCfg view.Config) (view.State, error) {
	tree := hierarchy.Build(tasks, sortOpts)
	state := view.New().WithSort(sortOpts)

	switch {
	case strings.TrimSpace(o.column) != "":
		field, text, err := parseColumnQuery(o.column)
		if err != nil {
			return view.State{}, err
		}
		state = state.WithColumnQuery(field, text, tree, viewCfg)
	case strings.TrimSpace(o.search) != "":
		state = state.WithGlobalQuery(o.search, tree, viewCfg)
	}

	if o.expandAll {
		for _, root := range tree.Roots {
			if root.HasChildren() && !state.Expanded.Has(root.Key) {
				state = state.ToggleExpand(root.Key)
			}
		}
	}
	for _, key := range o.expand {
		node, ok := tree.Find(strings.TrimSpace(key))
		if !ok || node.Kind == hierarchy.KindChild {
			return view.State{}, fmt.Errorf("--expand: unknown root row %q", key)
		}
		state = state.ToggleExpand(node.Key)
	}
	return state, nil
}

func parseColumnQuery(raw string) (search.FieldPath, string, error) {
	field, text, ok := strings.Cut(raw, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", "", fmt.Errorf("--column must be field=text")
	}
	return search.FieldPath(field), text, nil
}

func viewConfig(cfg *config.Config) (view.Config, error) {
	viewCfg := view.DefaultConfig()
	if fields := search.ParseFields(cfg.View.SearchFields); len(fields) > 0 {
		viewCfg.SearchFields = fields
	}
	transitions, err := cfg.View.TransitionList()
	if err != nil {
		return view.Config{}, err
	}
	viewCfg.Transitions = transitions
	return viewCfg, nil
}

// currentUser resolves the acting user. The zero user is returned when the
// server knows no one by the configured name and does not require auth.
func currentUser(ctx context.Context, client *api.Client) (models.User, bool, error) {
	me, err := client.Me(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	if me.User == nil {
		return models.User{}, false, nil
	}
	return me.User.User(), true, nil
}
