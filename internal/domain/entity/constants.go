package entity

// Task status constants
const (
	TaskStatusPending  = "PENDING"
	TaskStatusSigned   = "SIGNED"
	TaskStatusRejected = "REJECTED"
)

// Document status constants
const (
	DocumentStatusDraft    = "DRAFT"
	DocumentStatusSigned   = "SIGNED"
	DocumentStatusReturned = "RETURNED"
)

// Document kind constants. The kind drives both cockpit display and
// post-signature routing of the parent process.
const (
	KindOrder                    = "ORDER"                     // Portaria
	KindRegularityCertificate    = "REGULARITY_CERTIFICATE"    // Certidão de regularidade
	KindCommitmentNote           = "COMMITMENT_NOTE"           // Nota de empenho
	KindSettlementNote           = "SETTLEMENT_NOTE"           // Nota de liquidação
	KindPaymentOrder             = "PAYMENT_ORDER"             // Ordem de pagamento
	KindExceptionalAuthorization = "EXCEPTIONAL_AUTHORIZATION" // Autorização excepcional do ordenador
	KindLegalOpinion             = "LEGAL_OPINION"             // Parecer jurídico
	KindLegalDecision            = "LEGAL_DECISION"            // Decisão jurídica
	KindLegalOrder               = "LEGAL_ORDER"               // Despacho jurídico
	KindLegalCertificate         = "LEGAL_CERTIFICATE"         // Certidão jurídica
)

var legalAdvisoryKinds = map[string]bool{
	KindLegalOpinion:     true,
	KindLegalDecision:    true,
	KindLegalOrder:       true,
	KindLegalCertificate: true,
}

// IsLegalAdvisoryKind returns true if the kind belongs to the legal-advisory
// document family, which routes the process to the legal unit after signing.
func IsLegalAdvisoryKind(kind string) bool {
	return legalAdvisoryKinds[kind]
}

var validKinds = map[string]bool{
	KindOrder:                    true,
	KindRegularityCertificate:    true,
	KindCommitmentNote:           true,
	KindSettlementNote:           true,
	KindPaymentOrder:             true,
	KindExceptionalAuthorization: true,
	KindLegalOpinion:             true,
	KindLegalDecision:            true,
	KindLegalOrder:               true,
	KindLegalCertificate:         true,
}

// IsValidKind returns true if the kind is a recognized document kind.
func IsValidKind(kind string) bool {
	return validKinds[kind]
}

// Process status labels applied when the last pending task of a process is
// signed. These are the human-facing labels; WorkflowState carries the
// machine-readable counterpart.
const (
	ProcessStatusApproved            = "APPROVED"
	ProcessStatusAuthorizedByOrderer = "AUTHORIZED_BY_ORDERER"
	ProcessStatusDocumentSigned      = "DOCUMENT_SIGNED"
)

// Workflow state constants for Process. Downstream execution-document
// generation waits on WorkflowSignedByFinance.
const (
	WorkflowAwaitingSignature = "AWAITING_SIGNATURE"
	WorkflowSignedByFinance   = "SIGNED_BY_FINANCE"
)
