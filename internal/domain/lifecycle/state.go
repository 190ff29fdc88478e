package lifecycle

// State represents a signing task state
type State string

const (
	StatePending  State = "PENDING"
	StateSigned   State = "SIGNED"
	StateRejected State = "REJECTED"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateSigned:   true,
	StateRejected: true,
}

var terminalStates = map[State]bool{
	StateSigned:   true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid task state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
