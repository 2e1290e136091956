// Package guard decides whether a user may apply a workflow transition to a
// task. Every predicate is pure; the server re-runs the same checks as the
// final arbiter.
package guard

import (
	"fmt"
	"strings"

	"taskdesk/internal/models"
)

// Transition is one of the fixed workflow transitions.
type Transition string

const (
	Complete     Transition = "complete"
	FirstVerify  Transition = "first-verify"
	SecondVerify Transition = "second-verify"
)

// Transitions lists every transition in workflow order.
var Transitions = []Transition{Complete, FirstVerify, SecondVerify}

func ParseTransition(raw string) (Transition, error) {
	value := Transition(strings.ToLower(strings.TrimSpace(raw)))
	for _, transition := range Transitions {
		if value == transition {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid transition: %s", raw)
}

// Permission returns the capability that unlocks the transition.
func (t Transition) Permission() models.Permission {
	switch t {
	case FirstVerify:
		return models.PermFirstVerify
	case SecondVerify:
		return models.PermSecondVerify
	default:
		return models.PermMarkComplete
	}
}

// Verb is the past-tense phrase used in notices.
func (t Transition) Verb() string {
	switch t {
	case FirstVerify:
		return "first verified"
	case SecondVerify:
		return "second verified"
	default:
		return "marked complete"
	}
}

// Action is the imperative phrase used in notices.
func (t Transition) Action() string {
	switch t {
	case FirstVerify:
		return "first verify"
	case SecondVerify:
		return "second verify"
	default:
		return "mark complete"
	}
}

// CanComplete: task in progress and the user holds the permission or leads the project.
func CanComplete(task models.Task, user models.User) bool {
	return Check(Complete, task, user) == nil
}

// CanFirstVerify: task done, not yet first verified, user holds the permission.
func CanFirstVerify(task models.Task, user models.User) bool {
	return Check(FirstVerify, task, user) == nil
}

// CanSecondVerify: first verified, not yet second verified, user holds the permission.
func CanSecondVerify(task models.Task, user models.User) bool {
	return Check(SecondVerify, task, user) == nil
}

// Can dispatches to the predicate of the given transition.
func Can(t Transition, task models.Task, user models.User) bool {
	return Check(t, task, user) == nil
}

// Check returns nil when the transition is legal, otherwise a *Violation
// naming the first condition that failed.
func Check(t Transition, task models.Task, user models.User) error {
	switch t {
	case Complete:
		return checkComplete(task, user)
	case FirstVerify:
		return checkFirstVerify(task, user)
	case SecondVerify:
		return checkSecondVerify(task, user)
	default:
		return fmt.Errorf("invalid transition: %s", t)
	}
}

func checkComplete(task models.Task, user models.User) error {
	if task.Status == models.StatusDone {
		return violation(Complete, ReasonAlreadyDone, "Task is already completed")
	}
	if task.Status != models.StatusInProgress {
		return violation(Complete, ReasonNotReady, "Only tasks in progress can be marked complete")
	}
	if !user.Can(models.PermMarkComplete) && !isProjectLead(task, user) {
		return violation(Complete, ReasonNoPermission, "You do not have permission to mark this task complete")
	}
	return nil
}

func checkFirstVerify(task models.Task, user models.User) error {
	if task.IsFirstVerified() {
		return violation(FirstVerify, ReasonAlreadyDone, "Task is already first verified")
	}
	if task.Status != models.StatusDone {
		return violation(FirstVerify, ReasonNotReady, "Only completed tasks can be first verified")
	}
	if !user.Can(models.PermFirstVerify) {
		return violation(FirstVerify, ReasonNoPermission, "You do not have permission to first verify tasks")
	}
	return nil
}

func checkSecondVerify(task models.Task, user models.User) error {
	if task.IsSecondVerified() {
		return violation(SecondVerify, ReasonAlreadyDone, "Task is already second verified")
	}
	if !task.IsFirstVerified() {
		return violation(SecondVerify, ReasonNotReady, "Task must be first verified before second verification")
	}
	if task.Status != models.StatusDone {
		return violation(SecondVerify, ReasonNotReady, "Only completed tasks can be second verified")
	}
	if !user.Can(models.PermSecondVerify) {
		return violation(SecondVerify, ReasonNoPermission, "You do not have permission to second verify tasks")
	}
	return nil
}

func isProjectLead(task models.Task, user models.User) bool {
	lead, ok := task.ProjectLeadID()
	return ok && user.ID != "" && lead == user.ID
}
