package guard

import "errors"

// Reason classifies why a transition is not allowed.
type Reason string

const (
	ReasonAlreadyDone  Reason = "already_done"
	ReasonNotReady     Reason = "not_ready"
	ReasonNoPermission Reason = "no_permission"
)

// Violation is returned by Check when a guard condition fails.
type Violation struct {
	Transition Transition
	Reason     Reason
	Message    string
}

func (v *Violation) Error() string {
	if v == nil {
		return ""
	}
	return v.Message
}

func violation(t Transition, reason Reason, message string) error {
	return &Violation{Transition: t, Reason: reason, Message: message}
}

// AsViolation extracts a *Violation from err.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
