package entity

import "time"

// SigningTask represents one document awaiting one signature in the SEFIN
// cockpit. A task owns exactly one document slot and references the parent
// expense-advance process; several tasks may reference the same process.
//
// The process fields (protocol number, requester, unit, value, process
// creation time) are a snapshot captured at task creation so that listing and
// risk scoring never need a join against the process on read. They are never
// re-resolved.
type SigningTask struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id,omitempty"`
	ProcessID    string `json:"process_id"`
	DocumentKind string `json:"document_kind"`

	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to,omitempty"`

	SignedAt        *time.Time `json:"signed_at,omitempty"`
	SignedBy        string     `json:"signed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	// Process snapshot, captured at task creation.
	ProtocolNumber   string    `json:"protocol_number"`
	RequesterName    string    `json:"requester_name"`
	RequestingUnit   string    `json:"requesting_unit"`
	Value            float64   `json:"value"`
	ProcessCreatedAt time.Time `json:"process_created_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending returns true if the task still awaits a decision.
func (t *SigningTask) IsPending() bool {
	return t.Status == TaskStatusPending
}
