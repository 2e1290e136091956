package guard

import "taskdesk/internal/models"

// DisplayState is the affordance a task row shows for one transition.
// NoPermission is distinct from NotReady and must not be collapsed into it.
type DisplayState string

const (
	StateNotReady     DisplayState = "not_ready"
	StateAvailable    DisplayState = "available"
	StateNoPermission DisplayState = "no_permission"
	StateDone         DisplayState = "done"
)

// Display is the derived display state with its label.
type Display struct {
	Transition Transition   `json:"transition"`
	State      DisplayState `json:"state"`
	Label      string       `json:"label"`
}

var labels = map[Transition]map[DisplayState]string{
	Complete: {
		StateNotReady:     "Not Ready",
		StateAvailable:    "Mark Complete",
		StateNoPermission: "No Permission",
		StateDone:         "✓ Done",
	},
	FirstVerify: {
		StateNotReady:     "Not Ready",
		StateAvailable:    "✓ 1st Verify",
		StateNoPermission: "No Permission",
		StateDone:         "✓ 1st Done",
	},
	SecondVerify: {
		StateNotReady:     "Not Ready",
		StateAvailable:    "✓✓ 2nd Verify",
		StateNoPermission: "No Permission",
		StateDone:         "✓✓ 2nd Done",
	},
}

// Describe derives the display state of transition t for task and user.
func Describe(t Transition, task models.Task, user models.User) Display {
	state := StateAvailable
	if err := Check(t, task, user); err != nil {
		state = StateNotReady
		if v, ok := AsViolation(err); ok {
			switch v.Reason {
			case ReasonAlreadyDone:
				state = StateDone
			case ReasonNoPermission:
				state = StateNoPermission
			}
		}
	}
	return Display{Transition: t, State: state, Label: labels[t][state]}
}

// DescribeAll derives the display state of each transition in ts.
func DescribeAll(ts []Transition, task models.Task, user models.User) []Display {
	out := make([]Display, 0, len(ts))
	for _, t := range ts {
		out = append(out, Describe(t, task, user))
	}
	return out
}
