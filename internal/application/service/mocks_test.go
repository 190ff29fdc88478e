package service

import (
	"context"
	"time"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// Mock repositories

type mockTaskRepo struct {
	getByIDFunc        func(ctx context.Context, id string) (*entity.SigningTask, error)
	listPendingFunc    func(ctx context.Context, filter port.TaskFilter) ([]*entity.SigningTask, error)
	listByProcessFunc  func(ctx context.Context, processID string) ([]*entity.SigningTask, error)
	listByApproverFunc func(ctx context.Context, approverID string) ([]*entity.SigningTask, error)
	createFunc         func(ctx context.Context, task *entity.SigningTask) error
	updateFunc         func(ctx context.Context, task *entity.SigningTask) error
	updates            []*entity.SigningTask
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*entity.SigningTask, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) ListPending(ctx context.Context, filter port.TaskFilter) ([]*entity.SigningTask, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, filter)
	}
	return []*entity.SigningTask{}, nil
}

func (m *mockTaskRepo) ListByProcess(ctx context.Context, processID string) ([]*entity.SigningTask, error) {
	if m.listByProcessFunc != nil {
		return m.listByProcessFunc(ctx, processID)
	}
	return []*entity.SigningTask{}, nil
}

func (m *mockTaskRepo) ListByApprover(ctx context.Context, approverID string) ([]*entity.SigningTask, error) {
	if m.listByApproverFunc != nil {
		return m.listByApproverFunc(ctx, approverID)
	}
	return []*entity.SigningTask{}, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entity.SigningTask) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entity.SigningTask) error {
	m.updates = append(m.updates, task)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, task)
	}
	return nil
}

type mockDocumentRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Document, error)
	updateFunc  func(ctx context.Context, doc *entity.Document) error
	updates     []*entity.Document
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	m.updates = append(m.updates, doc)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, doc)
	}
	return nil
}

type mockRecordRepo struct {
	getByProcessKindFunc func(ctx context.Context, processID, kind string) (*entity.ExecutionRecord, error)
	upsertFunc           func(ctx context.Context, record *entity.ExecutionRecord) error
	upserts              []*entity.ExecutionRecord
}

func (m *mockRecordRepo) GetByProcessKind(ctx context.Context, processID, kind string) (*entity.ExecutionRecord, error) {
	if m.getByProcessKindFunc != nil {
		return m.getByProcessKindFunc(ctx, processID, kind)
	}
	return nil, nil
}

func (m *mockRecordRepo) Upsert(ctx context.Context, record *entity.ExecutionRecord) error {
	m.upserts = append(m.upserts, record)
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, record)
	}
	return nil
}

type mockProcessRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Process, error)
	updateFunc  func(ctx context.Context, process *entity.Process) error
	updates     []*entity.Process
}

func (m *mockProcessRepo) GetByID(ctx context.Context, id string) (*entity.Process, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockProcessRepo) Update(ctx context.Context, process *entity.Process) error {
	m.updates = append(m.updates, process)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, process)
	}
	return nil
}

type mockApproverRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Approver, error)
	listFunc    func(ctx context.Context) ([]*entity.Approver, error)
}

func (m *mockApproverRepo) GetByID(ctx context.Context, id string) (*entity.Approver, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Approver{ID: id, Name: "Approver " + id, Role: "Analista", DailyCapacity: 10}, nil
}

func (m *mockApproverRepo) List(ctx context.Context) ([]*entity.Approver, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.Approver{}, nil
}

// Mock external ports

type mockVerifier struct {
	verifyFunc func(ctx context.Context, approverID, credential string) (bool, error)
	calls      int
}

func (m *mockVerifier) Verify(ctx context.Context, approverID, credential string) (bool, error) {
	m.calls++
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, approverID, credential)
	}
	return credential == "1234", nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// Mock propagator for exercising the signing/batch services in isolation.

type mockPropagator struct {
	propagateFunc func(ctx context.Context, task *entity.SigningTask) error
	cascadeFunc   func(ctx context.Context, task *entity.SigningTask) error
	finalizeFunc  func(ctx context.Context, processID, kind string) error

	propagated []string
	cascaded   []string
	finalized  [][2]string
}

func (m *mockPropagator) Propagate(ctx context.Context, task *entity.SigningTask) error {
	m.propagated = append(m.propagated, task.ID)
	if m.propagateFunc != nil {
		return m.propagateFunc(ctx, task)
	}
	return nil
}

func (m *mockPropagator) Cascade(ctx context.Context, task *entity.SigningTask) error {
	m.cascaded = append(m.cascaded, task.ID)
	if m.cascadeFunc != nil {
		return m.cascadeFunc(ctx, task)
	}
	return nil
}

func (m *mockPropagator) FinalizeProcess(ctx context.Context, processID, kind string) error {
	m.finalized = append(m.finalized, [2]string{processID, kind})
	if m.finalizeFunc != nil {
		return m.finalizeFunc(ctx, processID, kind)
	}
	return nil
}

// Helpers

func pendingTask(id, processID, kind string) *entity.SigningTask {
	return &entity.SigningTask{
		ID:               id,
		ProcessID:        processID,
		DocumentKind:     kind,
		Status:           entity.TaskStatusPending,
		ProtocolNumber:   "2025/0042",
		RequesterName:    "Maria Souza",
		RequestingUnit:   "UG-01",
		Value:            3500,
		ProcessCreatedAt: testNow.Add(-10 * 24 * time.Hour),
		CreatedAt:        testNow.Add(-2 * time.Hour),
	}
}

// taskStore is an in-memory TaskRepository for cascade and batch tests.
type taskStore struct {
	mockTaskRepo
	tasks map[string]*entity.SigningTask
}

func newTaskStore(tasks ...*entity.SigningTask) *taskStore {
	s := &taskStore{tasks: make(map[string]*entity.SigningTask)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	s.getByIDFunc = func(ctx context.Context, id string) (*entity.SigningTask, error) {
		return s.tasks[id], nil
	}
	s.updateFunc = func(ctx context.Context, task *entity.SigningTask) error {
		s.tasks[task.ID] = task
		return nil
	}
	s.listByProcessFunc = func(ctx context.Context, processID string) ([]*entity.SigningTask, error) {
		var out []*entity.SigningTask
		for _, t := range s.tasks {
			if t.ProcessID == processID {
				out = append(out, t)
			}
		}
		return out, nil
	}
	return s
}
