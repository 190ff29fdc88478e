package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// RoutingConfig names the organizational units that receive a fully approved
// process. The originating execution unit comes from the process itself.
type RoutingConfig struct {
	LegalUnit       string
	OperationalUnit string
}

// PropagationService keeps the document, execution record and parent process
// consistent after a successful signature. Task, document and process live in
// independent collections with no cross-entity transaction, so every step is
// idempotent and individually retryable.
type PropagationService interface {
	// Propagate runs the full cascade for a just-signed task.
	Propagate(ctx context.Context, task *entity.SigningTask) error

	// Cascade syncs the linked document (if any) and the execution record.
	Cascade(ctx context.Context, task *entity.SigningTask) error

	// FinalizeProcess re-queries the process's tasks and, when none remain
	// unsigned, applies the documentKind routing. Safe to call when tasks
	// are still pending and safe to call twice.
	FinalizeProcess(ctx context.Context, processID, documentKind string) error
}

type propagationServiceImpl struct {
	taskRepo     port.TaskRepository
	documentRepo port.DocumentRepository
	recordRepo   port.ExecutionRecordRepository
	processRepo  port.ProcessRepository
	approverRepo port.ApproverRepository
	routing      RoutingConfig
	clock        port.Clock
	logger       Logger
}

// NewPropagationService creates a new PropagationService
func NewPropagationService(
	taskRepo port.TaskRepository,
	documentRepo port.DocumentRepository,
	recordRepo port.ExecutionRecordRepository,
	processRepo port.ProcessRepository,
	approverRepo port.ApproverRepository,
	routing RoutingConfig,
	clock port.Clock,
	logger Logger,
) PropagationService {
	return &propagationServiceImpl{
		taskRepo:     taskRepo,
		documentRepo: documentRepo,
		recordRepo:   recordRepo,
		processRepo:  processRepo,
		approverRepo: approverRepo,
		routing:      routing,
		clock:        clock,
		logger:       logger,
	}
}

// Propagate runs the full cascade for a just-signed task.
func (s *propagationServiceImpl) Propagate(ctx context.Context, task *entity.SigningTask) error {
	if err := s.Cascade(ctx, task); err != nil {
		return err
	}
	return s.FinalizeProcess(ctx, task.ProcessID, task.DocumentKind)
}

// Cascade syncs the linked document and the execution record.
func (s *propagationServiceImpl) Cascade(ctx context.Context, task *entity.SigningTask) error {
	if err := s.syncDocument(ctx, task); err != nil {
		return fmt.Errorf("sync document: %w", err)
	}

	// The execution record is the authoritative sync path and must run even
	// when the task carries no document id.
	if err := s.syncExecutionRecord(ctx, task); err != nil {
		return fmt.Errorf("sync execution record: %w", err)
	}

	return nil
}

// syncDocument marks the linked document SIGNED and captures the approver's
// current display name and role. The snapshot is never re-resolved later:
// profiles mutate, signed artifacts must not.
func (s *propagationServiceImpl) syncDocument(ctx context.Context, task *entity.SigningTask) error {
	if task.DocumentID == "" {
		return nil
	}

	doc, err := s.documentRepo.GetByID(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", task.DocumentID, err)
	}
	if doc == nil {
		s.logger.Warn("Signed task references missing document",
			"task_id", task.ID,
			"document_id", task.DocumentID)
		return nil
	}
	if doc.Status == entity.DocumentStatusSigned {
		// Already synced; repeating the cascade is a no-op.
		return nil
	}

	doc.Status = entity.DocumentStatusSigned
	doc.SignedAt = task.SignedAt
	doc.SignedBy = task.SignedBy

	approver, err := s.approverRepo.GetByID(ctx, task.SignedBy)
	if err != nil {
		return fmt.Errorf("get approver %s: %w", task.SignedBy, err)
	}
	if approver != nil {
		doc.SignerName = approver.Name
		doc.SignerRole = approver.Role
	}

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}

	s.logger.Info("Document marked signed",
		"document_id", doc.ID,
		"task_id", task.ID,
		"signed_by", task.SignedBy)

	return nil
}

// syncExecutionRecord upserts the ledger entry keyed by (processID, kind).
func (s *propagationServiceImpl) syncExecutionRecord(ctx context.Context, task *entity.SigningTask) error {
	record, err := s.recordRepo.GetByProcessKind(ctx, task.ProcessID, task.DocumentKind)
	if err != nil {
		return fmt.Errorf("get execution record: %w", err)
	}

	if record == nil {
		record = &entity.ExecutionRecord{
			ID:           uuid.NewString(),
			ProcessID:    task.ProcessID,
			DocumentKind: task.DocumentKind,
		}
	} else if record.Status == entity.DocumentStatusSigned {
		return nil
	}

	record.Status = entity.DocumentStatusSigned
	record.SignedAt = task.SignedAt
	record.UpdatedAt = s.clock.Now()

	if err := s.recordRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert execution record: %w", err)
	}

	return nil
}

// FinalizeProcess checks whether the process has reached "fully approved" and
// applies the three-way routing by document kind. The pending set is
// re-queried fresh here rather than trusted from any cached count, and the
// routing writes absolute values so applying it twice yields the same row.
func (s *propagationServiceImpl) FinalizeProcess(ctx context.Context, processID, documentKind string) error {
	tasks, err := s.taskRepo.ListByProcess(ctx, processID)
	if err != nil {
		return fmt.Errorf("list tasks for process %s: %w", processID, err)
	}

	remaining := 0
	for _, t := range tasks {
		if t.Status != entity.TaskStatusSigned {
			remaining++
		}
	}
	if remaining > 0 {
		s.logger.Info("Process still awaiting signatures",
			"process_id", processID,
			"remaining", remaining)
		return nil
	}

	process, err := s.processRepo.GetByID(ctx, processID)
	if err != nil {
		return fmt.Errorf("get process %s: %w", processID, err)
	}
	if process == nil {
		return fmt.Errorf("process %s not found", processID)
	}

	// Exactly one branch fires; the choice is a total function of the kind.
	switch {
	case documentKind == entity.KindExceptionalAuthorization:
		process.Status = entity.ProcessStatusAuthorizedByOrderer
		process.CurrentOwner = process.OriginUnit
		process.HandoffNote = fmt.Sprintf("Exceptional authorization signed; process returned to %s", process.OriginUnit)

	case entity.IsLegalAdvisoryKind(documentKind):
		process.Status = entity.ProcessStatusDocumentSigned
		process.CurrentOwner = s.routing.LegalUnit

	default:
		process.Status = entity.ProcessStatusApproved
		process.WorkflowState = entity.WorkflowSignedByFinance
		process.CurrentOwner = s.routing.OperationalUnit
	}

	process.UpdatedAt = s.clock.Now()

	if err := s.processRepo.Update(ctx, process); err != nil {
		return fmt.Errorf("update process %s: %w", processID, err)
	}

	s.logger.Info("Process fully approved",
		"process_id", processID,
		"document_kind", documentKind,
		"status", process.Status,
		"owner", process.CurrentOwner)

	return nil
}
