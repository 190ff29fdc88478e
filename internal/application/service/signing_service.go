package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
	"github.com/sefindigital/signing-engine/internal/domain/lifecycle"
	"github.com/sefindigital/signing-engine/internal/domain/risk"
)

// PendingTask is a queue entry with its risk assessment populated. Risk is
// recomputed on every listing; it is never stored.
type PendingTask struct {
	*entity.SigningTask
	Risk risk.Assessment `json:"risk"`
}

// SigningService owns the task lifecycle: assignment, signing and rejection.
// Preconditions are enforced against the lifecycle state machine; mutating
// operations report discriminated Results instead of errors.
type SigningService interface {
	// ListPending returns pending tasks with risk fields populated against
	// the listed population's average value.
	ListPending(ctx context.Context, filter port.TaskFilter) ([]*PendingTask, error)

	// Assign sets the task's assignee. Legal only while PENDING.
	Assign(ctx context.Context, taskID, approverID string) Result

	// Sign verifies the credential, marks the task SIGNED and synchronously
	// runs the consistency cascade before returning.
	Sign(ctx context.Context, taskID, approverID, credential string) Result

	// SignDeferred signs like Sign but skips the per-process finalize check;
	// the batch coordinator runs that check once per process after its loop.
	SignDeferred(ctx context.Context, taskID, approverID, credential string) Result

	// Reject moves the task to REJECTED with a mandatory reason and marks
	// the linked document, if any, as returned.
	Reject(ctx context.Context, taskID, approverID, reason string) Result
}

type signingServiceImpl struct {
	taskRepo     port.TaskRepository
	documentRepo port.DocumentRepository
	verifier     port.CredentialVerifier
	propagator   PropagationService
	clock        port.Clock
	logger       Logger
}

// NewSigningService creates a new SigningService
func NewSigningService(
	taskRepo port.TaskRepository,
	documentRepo port.DocumentRepository,
	verifier port.CredentialVerifier,
	propagator PropagationService,
	clock port.Clock,
	logger Logger,
) SigningService {
	return &signingServiceImpl{
		taskRepo:     taskRepo,
		documentRepo: documentRepo,
		verifier:     verifier,
		propagator:   propagator,
		clock:        clock,
		logger:       logger,
	}
}

// ListPending returns pending tasks annotated with risk assessments.
func (s *signingServiceImpl) ListPending(ctx context.Context, filter port.TaskFilter) ([]*PendingTask, error) {
	tasks, err := s.taskRepo.ListPending(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list pending tasks", "error", err)
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}

	avg := averageValue(tasks)
	now := s.clock.Now()

	result := make([]*PendingTask, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, &PendingTask{
			SigningTask: task,
			Risk:        risk.Score(task, avg, now),
		})
	}
	return result, nil
}

// averageValue is the population average the value-deviation factor scores
// against: the mean monetary value of the listed cohort.
func averageValue(tasks []*entity.SigningTask) float64 {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		sum += t.Value
	}
	return sum / float64(len(tasks))
}

// Assign sets the task's assignee.
func (s *signingServiceImpl) Assign(ctx context.Context, taskID, approverID string) Result {
	if approverID == "" {
		return failResult(taskID, ErrKindValidation, "approver id is required")
	}

	task, res := s.loadPendingTask(ctx, taskID, lifecycle.TriggerAssign)
	if !res.OK {
		return res
	}

	task.AssignedTo = approverID
	task.UpdatedAt = s.clock.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to assign task", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}

	s.logger.Info("Task assigned", "task_id", taskID, "approver_id", approverID)
	return okResult(task.ID, task.ProcessID, task.DocumentKind)
}

// Sign verifies, commits the task write and runs the full cascade.
func (s *signingServiceImpl) Sign(ctx context.Context, taskID, approverID, credential string) Result {
	return s.sign(ctx, taskID, approverID, credential, true)
}

// SignDeferred signs without the per-process finalize check.
func (s *signingServiceImpl) SignDeferred(ctx context.Context, taskID, approverID, credential string) Result {
	return s.sign(ctx, taskID, approverID, credential, false)
}

func (s *signingServiceImpl) sign(ctx context.Context, taskID, approverID, credential string, finalize bool) Result {
	task, res := s.loadPendingTask(ctx, taskID, lifecycle.TriggerSign)
	if !res.OK {
		return res
	}

	// Credential check comes before any write: a wrong PIN leaves the task
	// PENDING with nothing touched downstream.
	ok, err := s.verifier.Verify(ctx, approverID, credential)
	if err != nil {
		s.logger.Error("Credential verification failed", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}
	if !ok {
		s.logger.Warn("Invalid signing credential", "task_id", taskID, "approver_id", approverID)
		return failResult(taskID, ErrKindInvalidCredential, "signing credential does not match")
	}

	next, err := lifecycle.Fire(lifecycle.State(task.Status), lifecycle.TriggerSign)
	if err != nil {
		return failResult(taskID, ErrKindInvalidState, err.Error())
	}

	now := s.clock.Now()
	task.Status = next.String()
	task.SignedAt = &now
	task.SignedBy = approverID
	task.UpdatedAt = now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to persist signed task", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}

	s.logger.Info("Task signed",
		"task_id", taskID,
		"approver_id", approverID,
		"process_id", task.ProcessID,
		"document_kind", task.DocumentKind)

	result := okResult(task.ID, task.ProcessID, task.DocumentKind)

	// The task write has committed: cascade failures from here on are
	// logged and downgraded. "I signed this" is never rolled back because
	// a secondary sync failed; the idempotent cascade is retried instead.
	var propErr error
	if finalize {
		propErr = s.propagator.Propagate(ctx, task)
	} else {
		propErr = s.propagator.Cascade(ctx, task)
	}
	if propErr != nil {
		s.logger.Warn("Propagation incomplete after sign",
			"error", propErr,
			"task_id", taskID,
			"process_id", task.ProcessID)
		result.Warning = WarnPartialPropagation
		result.Message = propErr.Error()
	}

	return result
}

// Reject moves the task to REJECTED and stores the mandatory reason.
func (s *signingServiceImpl) Reject(ctx context.Context, taskID, approverID, reason string) Result {
	if strings.TrimSpace(reason) == "" {
		return failResult(taskID, ErrKindValidation, "rejection reason is required")
	}

	task, res := s.loadPendingTask(ctx, taskID, lifecycle.TriggerReject)
	if !res.OK {
		return res
	}

	next, err := lifecycle.Fire(lifecycle.State(task.Status), lifecycle.TriggerReject)
	if err != nil {
		return failResult(taskID, ErrKindInvalidState, err.Error())
	}

	task.Status = next.String()
	task.RejectionReason = reason
	task.UpdatedAt = s.clock.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to persist rejected task", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}

	s.logger.Info("Task rejected",
		"task_id", taskID,
		"approver_id", approverID,
		"reason", reason)

	result := okResult(task.ID, task.ProcessID, task.DocumentKind)

	// Mark the linked document returned so the requester's cockpit shows it
	// bounced. Routing the process back to the requester's unit is an
	// upstream collaborator's call, not ours.
	if task.DocumentID != "" {
		if err := s.returnDocument(ctx, task); err != nil {
			s.logger.Warn("Failed to mark document returned",
				"error", err,
				"task_id", taskID,
				"document_id", task.DocumentID)
			result.Warning = WarnPartialPropagation
			result.Message = err.Error()
		}
	}

	return result
}

func (s *signingServiceImpl) returnDocument(ctx context.Context, task *entity.SigningTask) error {
	doc, err := s.documentRepo.GetByID(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", task.DocumentID, err)
	}
	if doc == nil || doc.Status == entity.DocumentStatusReturned {
		return nil
	}

	doc.Status = entity.DocumentStatusReturned
	doc.UpdatedAt = s.clock.Now()

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	return nil
}

// loadPendingTask fetches the task and checks the trigger precondition
// against the state machine. The returned Result is OK when the caller may
// proceed.
func (s *signingServiceImpl) loadPendingTask(ctx context.Context, taskID string, trigger lifecycle.Trigger) (*entity.SigningTask, Result) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		s.logger.Error("Failed to get task", "error", err, "task_id", taskID)
		return nil, failResult(taskID, ErrKindStore, err.Error())
	}
	if task == nil {
		return nil, failResult(taskID, ErrKindValidation, "task not found")
	}

	if !lifecycle.CanFire(lifecycle.State(task.Status), trigger) {
		return nil, failResult(taskID, ErrKindInvalidState,
			fmt.Sprintf("task is %s; %s is not permitted", task.Status, trigger))
	}

	return task, okResult(task.ID, task.ProcessID, task.DocumentKind)
}
