package bulk

import (
	"fmt"
	"strings"

	"taskdesk/internal/guard"
	"taskdesk/internal/models"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one user-facing message produced by an execution.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Text)
}

// Failure frames what went wrong so callers can pick the recovery action.
type Failure string

const (
	FailureNone         Failure = ""
	FailurePrecondition Failure = "precondition"
	FailurePartial      Failure = "partial"
	FailureTransport    Failure = "transport"
)

const (
	msgEmptySelection  = "Please select at least one task"
	msgNothingDone     = "No tasks were processed"
	msgTransportFailed = "Request failed, please try again"
)

func eligibleNotice(eligible, selected int) Notice {
	return Notice{Level: LevelInfo, Text: fmt.Sprintf("Only %d out of %d selected tasks are eligible", eligible, selected)}
}

func noEligibleNotice(kind guard.Transition, reasons []string) Notice {
	return Notice{
		Level: LevelWarning,
		Text:  fmt.Sprintf("No eligible tasks to %s: %s", kind.Action(), strings.Join(reasons, "; ")),
	}
}

func successNotice(kind guard.Transition, count int) Notice {
	return Notice{Level: LevelSuccess, Text: fmt.Sprintf("%d task(s) %s", count, kind.Verb())}
}

func errorsNotice(kind guard.Transition, errs []models.ItemError) Notice {
	if len(errs) == 1 {
		return Notice{Level: LevelError, Text: fmt.Sprintf("Failed to %s %s", kind.Action(), itemLine(errs[0]))}
	}
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, fmt.Sprintf("%d task(s) could not be %s:", len(errs), kind.Verb()))
	for _, item := range errs {
		lines = append(lines, itemLine(item))
	}
	return Notice{Level: LevelWarning, Text: strings.Join(lines, "\n")}
}

func itemLine(item models.ItemError) string {
	name := item.TaskName
	if strings.TrimSpace(name) == "" {
		name = item.TaskID
	}
	return fmt.Sprintf("%s: %s", name, item.Error)
}
