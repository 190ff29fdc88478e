package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

func approvers(list ...*entity.Approver) *mockApproverRepo {
	return &mockApproverRepo{
		listFunc: func(ctx context.Context) ([]*entity.Approver, error) { return list, nil },
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approver, error) {
			for _, a := range list {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, nil
		},
	}
}

func signedAt(task *entity.SigningTask, at time.Time) *entity.SigningTask {
	task.Status = entity.TaskStatusSigned
	task.SignedAt = &at
	return task
}

func TestGetWorkloadCounts(t *testing.T) {
	ana := &entity.Approver{ID: "ana", Name: "Ana", Role: "Analista", DailyCapacity: 4}

	p1 := pendingTask("t1", "p1", entity.KindOrder)
	p2 := pendingTask("t2", "p2", entity.KindPaymentOrder)
	todaySigned := signedAt(pendingTask("t3", "p3", entity.KindOrder), testNow.Add(-2*time.Hour))
	oldSigned := signedAt(pendingTask("t4", "p4", entity.KindOrder), testNow.Add(-48*time.Hour))

	repo := &mockTaskRepo{
		listByApproverFunc: func(ctx context.Context, approverID string) ([]*entity.SigningTask, error) {
			return []*entity.SigningTask{p1, p2, todaySigned, oldSigned}, nil
		},
	}
	svc := NewWorkloadService(repo, approvers(ana), fixedClock{testNow}, mockLogger{})

	workloads, err := svc.GetWorkload(context.Background())

	require.NoError(t, err)
	require.Len(t, workloads, 1)
	w := workloads[0]
	assert.Equal(t, 4, w.AssignedCount)
	assert.Equal(t, 2, w.PendingCount)
	assert.Equal(t, 1, w.SignedTodayCount, "only signatures within the current calendar day count")
	assert.Equal(t, 50, w.WorkloadPercent)
}

func TestWorkloadPercent(t *testing.T) {
	tests := []struct {
		name     string
		pending  int
		capacity int
		want     int
	}{
		{"empty", 0, 10, 0},
		{"half", 5, 10, 50},
		{"rounded", 1, 3, 33},
		{"full", 10, 10, 100},
		{"over capacity capped", 25, 10, 100},
		{"zero capacity idle", 0, 0, 0},
		{"zero capacity loaded", 1, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workloadPercent(tt.pending, tt.capacity))
		})
	}
}

func TestRedistribute(t *testing.T) {
	task := pendingTask("t1", "p1", entity.KindOrder)
	task.AssignedTo = "ana"
	store := newTaskStore(task)
	svc := NewWorkloadService(&store.mockTaskRepo,
		approvers(&entity.Approver{ID: "bruno", DailyCapacity: 5}),
		fixedClock{testNow}, mockLogger{})

	res := svc.Redistribute(context.Background(), "t1", "bruno")

	require.True(t, res.OK)
	assert.Equal(t, "bruno", store.tasks["t1"].AssignedTo)
}

func TestRedistributeToSameApproverRejected(t *testing.T) {
	task := pendingTask("t1", "p1", entity.KindOrder)
	task.AssignedTo = "ana"
	store := newTaskStore(task)
	svc := NewWorkloadService(&store.mockTaskRepo,
		approvers(&entity.Approver{ID: "ana", DailyCapacity: 5}),
		fixedClock{testNow}, mockLogger{})

	res := svc.Redistribute(context.Background(), "t1", "ana")

	require.False(t, res.OK)
	assert.Equal(t, ErrKindInvalidState, res.ErrorKind)
	assert.Equal(t, "ana", store.tasks["t1"].AssignedTo)
}

func TestRedistributeUnassignedRejected(t *testing.T) {
	store := newTaskStore(pendingTask("t1", "p1", entity.KindOrder))
	svc := NewWorkloadService(&store.mockTaskRepo,
		approvers(&entity.Approver{ID: "bruno", DailyCapacity: 5}),
		fixedClock{testNow}, mockLogger{})

	res := svc.Redistribute(context.Background(), "t1", "bruno")

	require.False(t, res.OK)
	assert.Equal(t, ErrKindInvalidState, res.ErrorKind)
}

func TestRedistributeSignedTaskRejected(t *testing.T) {
	task := pendingTask("t1", "p1", entity.KindOrder)
	task.AssignedTo = "ana"
	task.Status = entity.TaskStatusSigned
	store := newTaskStore(task)
	svc := NewWorkloadService(&store.mockTaskRepo,
		approvers(&entity.Approver{ID: "bruno", DailyCapacity: 5}),
		fixedClock{testNow}, mockLogger{})

	res := svc.Redistribute(context.Background(), "t1", "bruno")

	require.False(t, res.OK)
	assert.Equal(t, ErrKindInvalidState, res.ErrorKind)
}

func TestPickLeastLoadedApprover(t *testing.T) {
	ana := &entity.Approver{ID: "ana", DailyCapacity: 10}
	bruno := &entity.Approver{ID: "bruno", DailyCapacity: 10}
	carla := &entity.Approver{ID: "carla", DailyCapacity: 10}

	pendingByApprover := map[string]int{"ana": 8, "bruno": 2, "carla": 2}
	repo := &mockTaskRepo{
		listByApproverFunc: func(ctx context.Context, approverID string) ([]*entity.SigningTask, error) {
			var tasks []*entity.SigningTask
			for i := 0; i < pendingByApprover[approverID]; i++ {
				tasks = append(tasks, pendingTask("t", "p", entity.KindOrder))
			}
			return tasks, nil
		},
	}
	svc := NewWorkloadService(repo, approvers(ana, bruno, carla), fixedClock{testNow}, mockLogger{})

	// bruno and carla tie on percent and pending; the lower id wins.
	picked, err := svc.PickLeastLoadedApprover(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "bruno", picked.ID)

	// Excluding bruno hands the tie to carla.
	picked, err = svc.PickLeastLoadedApprover(context.Background(), "bruno")
	require.NoError(t, err)
	assert.Equal(t, "carla", picked.ID)
}

func TestPickLeastLoadedApproverNoneEligible(t *testing.T) {
	svc := NewWorkloadService(&mockTaskRepo{},
		approvers(&entity.Approver{ID: "ana", DailyCapacity: 5}),
		fixedClock{testNow}, mockLogger{})

	_, err := svc.PickLeastLoadedApprover(context.Background(), "ana")
	assert.Error(t, err)
}
