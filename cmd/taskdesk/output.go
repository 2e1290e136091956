package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"taskdesk/internal/bulk"
	"taskdesk/internal/format"
	"taskdesk/internal/guard"
	"taskdesk/internal/models"
	"taskdesk/internal/view"
)

var (
	stdout          io.Writer        = os.Stdout
	outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}
)

var (
	dim       = color.New(color.Faint).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	highlight = color.New(color.Bold, color.FgYellow).SprintFunc()

	badgeStyles = map[guard.DisplayState]func(a ...any) string{
		guard.StateAvailable:    color.New(color.Bold, color.FgGreen).SprintFunc(),
		guard.StateDone:         color.New(color.FgCyan).SprintFunc(),
		guard.StateNoPermission: color.New(color.FgRed).SprintFunc(),
		guard.StateNotReady:     dim,
	}
	noticeStyles = map[bulk.Level]func(a ...any) string{
		bulk.LevelInfo:    color.New(color.FgCyan).SprintFunc(),
		bulk.LevelSuccess: color.New(color.FgGreen).SprintFunc(),
		bulk.LevelWarning: color.New(color.FgYellow).SprintFunc(),
		bulk.LevelError:   color.New(color.Bold, color.FgRed).SprintFunc(),
	}
)

func writeJSON(payload any) error {
	return outputFormatter.Write(stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(stdout, format, args...)
	return err
}

func writeRows(rows []view.Row) error {
	if len(rows) == 0 {
		return writePlain("%s\n", dim("no tasks"))
	}
	for _, row := range rows {
		if err := writePlain("%s\n", formatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(row view.Row) string {
	var b strings.Builder

	switch {
	case row.Depth > 0:
		b.WriteString(strings.Repeat("  ", row.Depth))
		b.WriteString(dim("└ "))
	case row.HasChildren && row.Expanded:
		b.WriteString("▾ ")
	case row.HasChildren:
		b.WriteString("▸ ")
	default:
		b.WriteString("  ")
	}

	name := row.Task.Name
	if row.Match.SelfMatch {
		name = highlight(name)
	} else if row.Depth == 0 {
		name = bold(name)
	}
	fmt.Fprintf(&b, "%s  %-7s  %s", row.Key, row.TypeLabel, name)

	if details := taskDetails(row.Task); len(details) > 0 {
		fmt.Fprintf(&b, "  %s", dim("("+strings.Join(details, ", ")+")"))
	}
	for _, action := range row.Actions {
		style, ok := badgeStyles[action.State]
		if !ok {
			style = dim
		}
		fmt.Fprintf(&b, " %s", style("["+action.Label+"]"))
	}
	return b.String()
}

func taskDetails(task models.Task) []string {
	details := []string{string(task.Status), fmt.Sprintf("P%d", task.Priority)}
	if task.Code != "" {
		details = append(details, task.Code)
	}
	if task.Project != nil {
		details = append(details, task.Project.Code)
	}
	if len(task.Assignees) > 0 {
		names := make([]string, 0, len(task.Assignees))
		for _, assignee := range task.Assignees {
			names = append(names, assignee.Name)
		}
		details = append(details, "@"+strings.Join(names, ",@"))
	}
	if task.DueDate != nil {
		details = append(details, "due "+task.DueDate.Format(time.DateOnly))
	}
	return details
}

func writeNotices(notices []bulk.Notice) error {
	for _, notice := range notices {
		style, ok := noticeStyles[notice.Level]
		if !ok {
			style = fmt.Sprint
		}
		if err := writePlain("%s\n", style(notice.Text)); err != nil {
			return err
		}
	}
	return nil
}
