package entity

import "time"

// Document is the generated artifact tied 1:1 to a SigningTask. SignerName
// and SignerRole are captured at signature time because the approver's
// profile may change afterwards and the signed artifact must stay stable.
type Document struct {
	ID        string `json:"id"`
	ProcessID string `json:"process_id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`

	SignedAt   *time.Time `json:"signed_at,omitempty"`
	SignedBy   string     `json:"signed_by,omitempty"`
	SignerName string     `json:"signer_name,omitempty"`
	SignerRole string     `json:"signer_role,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExecutionRecord is the ledger entry downstream financial-execution screens
// read. It is keyed by (ProcessID, DocumentKind) rather than by document id:
// tasks may be created directly against a process/kind pair with no document
// row, and the record must still be kept in SIGNED lockstep.
type ExecutionRecord struct {
	ID           string `json:"id"`
	ProcessID    string `json:"process_id"`
	DocumentKind string `json:"document_kind"`
	Status       string `json:"status"`

	SignedAt  *time.Time `json:"signed_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
