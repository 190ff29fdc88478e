package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
	"github.com/sefindigital/signing-engine/internal/domain/lifecycle"
)

// WorkloadService computes per-approver load metrics and supports manual
// redistribution of pending tasks. All numbers are derived views recomputed
// on demand; nothing here is persisted.
type WorkloadService interface {
	// GetWorkload returns metrics for every approver.
	GetWorkload(ctx context.Context) ([]*entity.ApproverWorkload, error)

	// Redistribute reassigns a PENDING task to another approver. Legal only
	// when the task is currently assigned to a different approver.
	Redistribute(ctx context.Context, taskID, targetApproverID string) Result

	// PickLeastLoadedApprover selects the approver with the lowest workload
	// percentage, excluding the given id. Ties break by lowest pending
	// count, then by id for determinism.
	PickLeastLoadedApprover(ctx context.Context, excludeApproverID string) (*entity.Approver, error)
}

type workloadServiceImpl struct {
	taskRepo     port.TaskRepository
	approverRepo port.ApproverRepository
	clock        port.Clock
	logger       Logger
}

// NewWorkloadService creates a new WorkloadService
func NewWorkloadService(
	taskRepo port.TaskRepository,
	approverRepo port.ApproverRepository,
	clock port.Clock,
	logger Logger,
) WorkloadService {
	return &workloadServiceImpl{
		taskRepo:     taskRepo,
		approverRepo: approverRepo,
		clock:        clock,
		logger:       logger,
	}
}

// GetWorkload returns metrics for every approver.
func (s *workloadServiceImpl) GetWorkload(ctx context.Context) ([]*entity.ApproverWorkload, error) {
	approvers, err := s.approverRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list approvers", "error", err)
		return nil, fmt.Errorf("list approvers: %w", err)
	}

	now := s.clock.Now()
	dayStart := dayStartOf(now)

	workloads := make([]*entity.ApproverWorkload, 0, len(approvers))
	for _, approver := range approvers {
		tasks, err := s.taskRepo.ListByApprover(ctx, approver.ID)
		if err != nil {
			s.logger.Error("Failed to list tasks for approver",
				"error", err,
				"approver_id", approver.ID)
			return nil, fmt.Errorf("list tasks for approver %s: %w", approver.ID, err)
		}

		w := &entity.ApproverWorkload{
			ApproverID:    approver.ID,
			Name:          approver.Name,
			Role:          approver.Role,
			DailyCapacity: approver.DailyCapacity,
			AssignedCount: len(tasks),
		}

		for _, task := range tasks {
			switch task.Status {
			case entity.TaskStatusPending:
				w.PendingCount++
			case entity.TaskStatusSigned:
				if task.SignedAt != nil && !task.SignedAt.Before(dayStart) && task.SignedAt.Before(dayStart.AddDate(0, 0, 1)) {
					w.SignedTodayCount++
				}
			}
		}

		w.WorkloadPercent = workloadPercent(w.PendingCount, approver.DailyCapacity)
		workloads = append(workloads, w)
	}

	return workloads, nil
}

// dayStartOf returns midnight of the caller's local calendar day.
func dayStartOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// workloadPercent is min(100, round(pending/capacity*100)). A zero capacity
// counts as saturated as soon as anything is pending.
func workloadPercent(pending, capacity int) int {
	if capacity <= 0 {
		if pending > 0 {
			return 100
		}
		return 0
	}
	percent := int(math.Round(float64(pending) / float64(capacity) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// Redistribute reassigns a PENDING task to another approver.
func (s *workloadServiceImpl) Redistribute(ctx context.Context, taskID, targetApproverID string) Result {
	if targetApproverID == "" {
		return failResult(taskID, ErrKindValidation, "target approver id is required")
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		s.logger.Error("Failed to get task", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}
	if task == nil {
		return failResult(taskID, ErrKindValidation, "task not found")
	}

	if !lifecycle.CanFire(lifecycle.State(task.Status), lifecycle.TriggerAssign) {
		return failResult(taskID, ErrKindInvalidState,
			fmt.Sprintf("task is %s; redistribution is not permitted", task.Status))
	}
	if task.AssignedTo == "" {
		return failResult(taskID, ErrKindInvalidState, "task is unassigned; use assign instead")
	}
	if task.AssignedTo == targetApproverID {
		return failResult(taskID, ErrKindInvalidState, "task is already assigned to this approver")
	}

	target, err := s.approverRepo.GetByID(ctx, targetApproverID)
	if err != nil {
		s.logger.Error("Failed to get approver", "error", err, "approver_id", targetApproverID)
		return failResult(taskID, ErrKindStore, err.Error())
	}
	if target == nil {
		return failResult(taskID, ErrKindValidation, "target approver not found")
	}

	previous := task.AssignedTo
	task.AssignedTo = targetApproverID
	task.UpdatedAt = s.clock.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to redistribute task", "error", err, "task_id", taskID)
		return failResult(taskID, ErrKindStore, err.Error())
	}

	s.logger.Info("Task redistributed",
		"task_id", taskID,
		"from", previous,
		"to", targetApproverID)

	return okResult(task.ID, task.ProcessID, task.DocumentKind)
}

// PickLeastLoadedApprover selects the least loaded eligible approver.
func (s *workloadServiceImpl) PickLeastLoadedApprover(ctx context.Context, excludeApproverID string) (*entity.Approver, error) {
	workloads, err := s.GetWorkload(ctx)
	if err != nil {
		return nil, err
	}

	eligible := workloads[:0]
	for _, w := range workloads {
		if w.ApproverID != excludeApproverID {
			eligible = append(eligible, w)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no eligible approver")
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].WorkloadPercent != eligible[j].WorkloadPercent {
			return eligible[i].WorkloadPercent < eligible[j].WorkloadPercent
		}
		if eligible[i].PendingCount != eligible[j].PendingCount {
			return eligible[i].PendingCount < eligible[j].PendingCount
		}
		return eligible[i].ApproverID < eligible[j].ApproverID
	})

	return s.approverRepo.GetByID(ctx, eligible[0].ApproverID)
}
