package service

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Error kinds carried by failed operation results.
const (
	// ErrKindInvalidCredential means the signing secret did not match. The
	// task is unchanged; the caller may retry immediately.
	ErrKindInvalidCredential = "INVALID_CREDENTIAL"

	// ErrKindInvalidState means a transition was attempted from a
	// non-PENDING task. Not retryable with the same input.
	ErrKindInvalidState = "INVALID_STATE"

	// ErrKindValidation means a required field was missing or malformed.
	ErrKindValidation = "VALIDATION_ERROR"

	// ErrKindStore means the store adapter failed; surfaced as-is.
	ErrKindStore = "STORE_ERROR"
)

// WarnPartialPropagation flags a sign whose task write committed but whose
// downstream cascade failed. The sign still counts as successful; the
// document/execution-record/process sync needs a retry.
const WarnPartialPropagation = "PARTIAL_PROPAGATION"

// Result is the discriminated outcome of a mutating operation. Mutating
// calls never return Go errors across the public boundary so batch
// aggregation can rely on structured results.
type Result struct {
	OK        bool   `json:"ok"`
	ErrorKind string `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`
	Warning   string `json:"warning,omitempty"`

	TaskID       string `json:"task_id,omitempty"`
	ProcessID    string `json:"process_id,omitempty"`
	DocumentKind string `json:"document_kind,omitempty"`
}

func okResult(taskID, processID, documentKind string) Result {
	return Result{OK: true, TaskID: taskID, ProcessID: processID, DocumentKind: documentKind}
}

func failResult(taskID, kind, message string) Result {
	return Result{OK: false, TaskID: taskID, ErrorKind: kind, Message: message}
}

// BatchFailure records one failed item of a batch operation.
type BatchFailure struct {
	TaskID    string `json:"task_id"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// BatchResult aggregates a best-effort batch. A batch with failures is a
// partial success ("N of M signed"), never a hard error.
type BatchResult struct {
	SuccessCount int            `json:"success_count"`
	FailureCount int            `json:"failure_count"`
	Failures     []BatchFailure `json:"failures,omitempty"`
}
