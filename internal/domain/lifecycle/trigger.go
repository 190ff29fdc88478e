package lifecycle

// Trigger represents an operation that may cause a state transition
type Trigger string

const (
	// TriggerAssign sets or changes the assignee; the task stays PENDING.
	TriggerAssign Trigger = "ASSIGN"

	// TriggerSign moves the task to SIGNED.
	TriggerSign Trigger = "SIGN"

	// TriggerReject moves the task to REJECTED.
	TriggerReject Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
