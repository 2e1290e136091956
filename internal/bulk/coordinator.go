// Package bulk runs a workflow transition over a selection of tasks: it
// filters the selection through the guards, sends one batched request for
// the eligible tasks, and turns the per-task result into notices.
package bulk

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"taskdesk/internal/guard"
	"taskdesk/internal/models"
)

// ErrNoRequestFunc is returned when Execute is called without a request function.
var ErrNoRequestFunc = errors.New("bulk: request function is required")

// ErrInFlight is returned when a request for the same transition is already running.
var ErrInFlight = errors.New("a request for this action is already in progress")

// Request is the single batched request sent for one execution.
type Request struct {
	Transition guard.Transition `json:"transition"`
	TaskIDs    []string         `json:"taskIds"`
	ActorID    string           `json:"actorId"`
	// RequireFirstVerified asks the backend to confirm first verification
	// is recorded before applying a second verification.
	RequireFirstVerified bool `json:"requireFirstVerified,omitempty"`
}

// RequestFunc performs the batched request. A returned error is a transport
// failure; per-task rejections belong in the result's Errors list.
type RequestFunc func(ctx context.Context, req Request) (models.BulkResult, error)

// Ineligible records a selected task the guard rejected locally.
type Ineligible struct {
	Task   models.TaskRef `json:"task"`
	Reason string         `json:"reason"`
}

// Outcome describes everything one execution produced.
type Outcome struct {
	Transition     guard.Transition  `json:"transition"`
	Attempted      bool              `json:"attempted"`
	Eligible       []string          `json:"eligible"`
	Ineligible     []Ineligible      `json:"ineligible,omitempty"`
	Result         models.BulkResult `json:"result"`
	Notices        []Notice          `json:"notices"`
	Failure        Failure           `json:"failure,omitempty"`
	ClearSelection bool              `json:"clearSelection"`
	Refresh        bool              `json:"refresh"`
	TransportError string            `json:"transportError,omitempty"`
}

// Coordinator executes bulk transitions. At most one request per transition
// kind is in flight; different kinds do not block each other.
type Coordinator struct {
	logger   *slog.Logger
	inFlight map[guard.Transition]*semaphore.Weighted
}

// NewCoordinator creates a coordinator.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	inFlight := make(map[guard.Transition]*semaphore.Weighted, len(guard.Transitions))
	for _, t := range guard.Transitions {
		inFlight[t] = semaphore.NewWeighted(1)
	}
	return &Coordinator{logger: logger, inFlight: inFlight}
}

// Execute runs kind over selection on behalf of actor.
func (c *Coordinator) Execute(ctx context.Context, selection []models.Task, kind guard.Transition, actor models.User, request RequestFunc) (Outcome, error) {
	if request == nil {
		return Outcome{}, ErrNoRequestFunc
	}
	sem, ok := c.inFlight[kind]
	if !ok {
		_, err := guard.ParseTransition(string(kind))
		return Outcome{}, err
	}
	if !sem.TryAcquire(1) {
		return Outcome{}, ErrInFlight
	}
	defer sem.Release(1)

	out := Outcome{Transition: kind, Eligible: []string{}}

	selection = uniqueTasks(selection)
	if len(selection) == 0 {
		out.Failure = FailurePrecondition
		out.Notices = append(out.Notices, Notice{Level: LevelWarning, Text: msgEmptySelection})
		return out, nil
	}

	var reasons []string
	seenReason := map[string]bool{}
	for _, task := range selection {
		if err := guard.Check(kind, task, actor); err != nil {
			out.Ineligible = append(out.Ineligible, Ineligible{Task: task.Ref(), Reason: err.Error()})
			if !seenReason[err.Error()] {
				seenReason[err.Error()] = true
				reasons = append(reasons, err.Error())
			}
			continue
		}
		out.Eligible = append(out.Eligible, task.ID)
	}

	if len(out.Eligible) == 0 {
		out.Failure = FailurePrecondition
		if len(selection) == 1 {
			out.Notices = append(out.Notices, Notice{Level: LevelWarning, Text: reasons[0]})
		} else {
			out.Notices = append(out.Notices, noEligibleNotice(kind, reasons))
		}
		c.log().Debug("bulk transition rejected locally", "transition", kind, "selected", len(selection))
		return out, nil
	}
	if len(out.Eligible) < len(selection) {
		out.Notices = append(out.Notices, eligibleNotice(len(out.Eligible), len(selection)))
	}

	req := Request{
		Transition:           kind,
		TaskIDs:              append([]string(nil), out.Eligible...),
		ActorID:              actor.ID,
		RequireFirstVerified: kind == guard.SecondVerify,
	}
	out.Attempted = true
	result, err := request(ctx, req)
	if err != nil {
		out.Failure = FailureTransport
		out.TransportError = transportMessage(err)
		out.Notices = append(out.Notices, Notice{Level: LevelError, Text: out.TransportError})
		c.log().Warn("bulk transition request failed", "transition", kind, "tasks", len(req.TaskIDs), "error", err)
		return out, nil
	}
	out.Result = result

	if len(result.Success) > 0 {
		out.Notices = append(out.Notices, successNotice(kind, len(result.Success)))
		out.ClearSelection = true
		out.Refresh = true
	}
	if len(result.Errors) > 0 {
		out.Failure = FailurePartial
		out.Notices = append(out.Notices, errorsNotice(kind, result.Errors))
	}
	if result.Empty() {
		out.Notices = append(out.Notices, Notice{Level: LevelInfo, Text: msgNothingDone})
	}

	c.log().Info("bulk transition complete",
		"transition", kind,
		"actor", actor.ID,
		"selected", len(selection),
		"eligible", len(out.Eligible),
		"succeeded", len(result.Success),
		"failed", len(result.Errors),
	)
	return out, nil
}

// uniqueTasks keeps the first occurrence of each task id.
func uniqueTasks(tasks []models.Task) []models.Task {
	seen := make(map[string]bool, len(tasks))
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		out = append(out, task)
	}
	return out
}

func (c *Coordinator) log() *slog.Logger {
	if c != nil && c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// messager is implemented by transport errors carrying a server message.
type messager interface {
	ErrorMessage() string
}

func transportMessage(err error) string {
	var m messager
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.ErrorMessage()); msg != "" {
			return msg
		}
		return msgTransportFailed
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return msgTransportFailed
}
