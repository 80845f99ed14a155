package draft

import "fmt"

// State is the edit/submit phase of a draft session. Saving is tracked
// separately because a save never changes the edit state.
type State string

const (
	StateIdle         State = "idle"
	StateEditing      State = "editing"
	StateValidating   State = "validating"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
	StateSubmitFailed State = "submit_failed"
)

// Event drives a State transition.
type Event string

const (
	EventEdit          Event = "edit"
	EventSubmit        Event = "submit"
	EventInvalid       Event = "invalid"
	EventValid         Event = "valid"
	EventSubmitted     Event = "submitted"
	EventSubmitFailed  Event = "submit_failed"
	EventResumeEditing Event = "resume_editing"
)

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventEdit:   StateEditing,
		EventSubmit: StateValidating,
	},
	StateEditing: {
		EventEdit:   StateEditing,
		EventSubmit: StateValidating,
	},
	StateValidating: {
		EventInvalid: StateEditing,
		EventValid:   StateSubmitting,
	},
	StateSubmitting: {
		EventSubmitted:    StateSubmitted,
		EventSubmitFailed: StateSubmitFailed,
	},
	StateSubmitFailed: {
		EventResumeEditing: StateEditing,
		EventEdit:          StateEditing,
	},
	StateSubmitted: {
		EventEdit:   StateEditing,
		EventSubmit: StateValidating,
	},
}

// ErrInvalidTransition is returned for an event the current state does not accept.
type ErrInvalidTransition struct {
	From  State
	Event Event
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition from %s on %s", e.From, e.Event)
}

// Transition returns the state reached from `from` on ev.
func Transition(from State, ev Event) (State, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, ErrInvalidTransition{From: from, Event: ev}
}
