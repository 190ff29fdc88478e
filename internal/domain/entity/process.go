package entity

import "time"

// Process represents the parent expense-advance request that tasks sign
// documents for. Status is the human-facing label; WorkflowState is the
// machine-readable flag routing logic keys on. CurrentOwner is the
// organizational unit that currently holds the process.
type Process struct {
	ID             string  `json:"id"`
	ProtocolNumber string  `json:"protocol_number"`
	RequesterName  string  `json:"requester_name"`
	Value          float64 `json:"value"`

	Status        string `json:"status"`
	WorkflowState string `json:"workflow_state"`
	CurrentOwner  string `json:"current_owner"`

	// OriginUnit is the execution unit that originated the request; the
	// process returns there on exceptional authorization.
	OriginUnit  string `json:"origin_unit"`
	HandoffNote string `json:"handoff_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
