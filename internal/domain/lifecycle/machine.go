package lifecycle

import "fmt"

// transitions is the closed transition table for the signing lifecycle.
// PENDING is the only non-terminal state; SIGNED and REJECTED accept nothing.
var transitions = map[State]map[Trigger]State{
	StatePending: {
		TriggerAssign: StatePending,
		TriggerSign:   StateSigned,
		TriggerReject: StateRejected,
	},
}

// CanFire returns true if the trigger is permitted in the given state.
func CanFire(state State, trigger Trigger) bool {
	_, ok := transitions[state][trigger]
	return ok
}

// Fire validates the trigger against the current state and returns the
// resulting state. The transition table is fixed; callers own persisting the
// returned state.
func Fire(state State, trigger Trigger) (State, error) {
	if !state.IsValid() {
		return state, fmt.Errorf("%w: %s", ErrInvalidState, state)
	}

	next, ok := transitions[state][trigger]
	if !ok {
		return state, fmt.Errorf("%w: %s does not permit %s", ErrInvalidTransition, state, trigger)
	}

	return next, nil
}

// PermittedTriggers returns all triggers that can fire in the given state.
func PermittedTriggers(state State) []Trigger {
	var triggers []Trigger
	for trigger := range transitions[state] {
		triggers = append(triggers, trigger)
	}
	return triggers
}
