package port

import (
	"context"

	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// TaskFilter narrows pending-task listings. Zero-value fields are ignored.
type TaskFilter struct {
	ProcessID    string
	DocumentKind string
	AssignedTo   string
}

// TaskRepository defines persistence operations for SigningTask.
//
// Lookups return (nil, nil) when no row matches; errors are reserved for
// transport or constraint failures. No method retries internally.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*entity.SigningTask, error)
	ListPending(ctx context.Context, filter TaskFilter) ([]*entity.SigningTask, error)
	ListByProcess(ctx context.Context, processID string) ([]*entity.SigningTask, error)
	ListByApprover(ctx context.Context, approverID string) ([]*entity.SigningTask, error)
	Create(ctx context.Context, task *entity.SigningTask) error
	Update(ctx context.Context, task *entity.SigningTask) error
}

// DocumentRepository defines persistence operations for Document
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
}

// ExecutionRecordRepository defines persistence operations for
// ExecutionRecord. Records are keyed by (processID, documentKind); Upsert
// creates the record when it does not exist yet.
type ExecutionRecordRepository interface {
	GetByProcessKind(ctx context.Context, processID, documentKind string) (*entity.ExecutionRecord, error)
	Upsert(ctx context.Context, record *entity.ExecutionRecord) error
}

// ProcessRepository defines persistence operations for Process
type ProcessRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Process, error)
	Update(ctx context.Context, process *entity.Process) error
}

// ApproverRepository defines read operations for Approver
type ApproverRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Approver, error)
	List(ctx context.Context) ([]*entity.Approver, error)
}
