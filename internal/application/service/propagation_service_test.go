package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

var testRouting = RoutingConfig{
	LegalUnit:       "ASJUR",
	OperationalUnit: "SEFIN-EXEC",
}

func signedTask(id, processID, kind string) *entity.SigningTask {
	task := pendingTask(id, processID, kind)
	task.Status = entity.TaskStatusSigned
	signedAt := testNow
	task.SignedAt = &signedAt
	task.SignedBy = "ana"
	return task
}

func newPropagation(tasks *taskStore, docs *mockDocumentRepo, records *mockRecordRepo, processes *mockProcessRepo) PropagationService {
	return NewPropagationService(
		&tasks.mockTaskRepo, docs, records, processes,
		&mockApproverRepo{}, testRouting, fixedClock{testNow}, mockLogger{},
	)
}

func TestCascadeSyncsDocumentAndRecord(t *testing.T) {
	task := signedTask("t1", "p1", entity.KindOrder)
	task.DocumentID = "d1"
	store := newTaskStore(task)
	docs := &mockDocumentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Document, error) {
			return &entity.Document{ID: id, ProcessID: "p1", Kind: entity.KindOrder, Status: entity.DocumentStatusDraft}, nil
		},
	}
	records := &mockRecordRepo{}
	svc := newPropagation(store, docs, records, &mockProcessRepo{})

	require.NoError(t, svc.Cascade(context.Background(), task))

	require.Len(t, docs.updates, 1)
	doc := docs.updates[0]
	assert.Equal(t, entity.DocumentStatusSigned, doc.Status)
	assert.Equal(t, "ana", doc.SignedBy)
	assert.Equal(t, "Approver ana", doc.SignerName)
	assert.Equal(t, "Analista", doc.SignerRole)

	require.Len(t, records.upserts, 1)
	rec := records.upserts[0]
	assert.Equal(t, "p1", rec.ProcessID)
	assert.Equal(t, entity.KindOrder, rec.DocumentKind)
	assert.Equal(t, entity.DocumentStatusSigned, rec.Status)
}

func TestCascadeWithoutDocumentStillUpdatesRecord(t *testing.T) {
	// Tasks created directly against (processId, documentKind) are a
	// supported case: the execution record sync must run regardless.
	task := signedTask("t1", "p1", entity.KindCommitmentNote)
	store := newTaskStore(task)
	docs := &mockDocumentRepo{}
	records := &mockRecordRepo{}
	svc := newPropagation(store, docs, records, &mockProcessRepo{})

	require.NoError(t, svc.Cascade(context.Background(), task))

	assert.Empty(t, docs.updates)
	require.Len(t, records.upserts, 1)
	assert.Equal(t, entity.DocumentStatusSigned, records.upserts[0].Status)
}

func TestCascadeIsIdempotent(t *testing.T) {
	task := signedTask("t1", "p1", entity.KindOrder)
	task.DocumentID = "d1"
	store := newTaskStore(task)

	doc := &entity.Document{ID: "d1", ProcessID: "p1", Kind: entity.KindOrder, Status: entity.DocumentStatusDraft}
	docs := &mockDocumentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Document, error) { return doc, nil },
	}
	var record *entity.ExecutionRecord
	records := &mockRecordRepo{
		getByProcessKindFunc: func(ctx context.Context, processID, kind string) (*entity.ExecutionRecord, error) {
			return record, nil
		},
		upsertFunc: func(ctx context.Context, r *entity.ExecutionRecord) error {
			record = r
			return nil
		},
	}
	svc := newPropagation(store, docs, records, &mockProcessRepo{})

	require.NoError(t, svc.Cascade(context.Background(), task))
	require.NoError(t, svc.Cascade(context.Background(), task))

	// The second run must observe the already-consistent state and write
	// nothing.
	assert.Len(t, docs.updates, 1)
	assert.Len(t, records.upserts, 1)
}

func TestFinalizeSkipsWhileTasksRemainPending(t *testing.T) {
	store := newTaskStore(
		signedTask("t1", "p1", entity.KindOrder),
		pendingTask("t2", "p1", entity.KindRegularityCertificate),
	)
	processes := &mockProcessRepo{}
	svc := newPropagation(store, &mockDocumentRepo{}, &mockRecordRepo{}, processes)

	require.NoError(t, svc.FinalizeProcess(context.Background(), "p1", entity.KindOrder))

	assert.Empty(t, processes.updates, "process must not change before the last signature")
}

func TestLastTaskRoutesByKind(t *testing.T) {
	tests := []struct {
		name          string
		kind          string
		wantStatus    string
		wantOwner     string
		wantWorkflow  string
		wantHandoff   bool
	}{
		{
			name:         "default kinds approve for finance",
			kind:         entity.KindRegularityCertificate,
			wantStatus:   entity.ProcessStatusApproved,
			wantOwner:    "SEFIN-EXEC",
			wantWorkflow: entity.WorkflowSignedByFinance,
		},
		{
			name:        "exceptional authorization returns to origin unit",
			kind:        entity.KindExceptionalAuthorization,
			wantStatus:  entity.ProcessStatusAuthorizedByOrderer,
			wantOwner:   "UG-07",
			wantHandoff: true,
		},
		{
			name:       "legal opinion routes to legal unit",
			kind:       entity.KindLegalOpinion,
			wantStatus: entity.ProcessStatusDocumentSigned,
			wantOwner:  "ASJUR",
		},
		{
			name:       "legal decision routes to legal unit",
			kind:       entity.KindLegalDecision,
			wantStatus: entity.ProcessStatusDocumentSigned,
			wantOwner:  "ASJUR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTaskStore(signedTask("t1", "p1", tt.kind))
			process := &entity.Process{
				ID:            "p1",
				Status:        "AWAITING",
				WorkflowState: entity.WorkflowAwaitingSignature,
				CurrentOwner:  "SEFIN",
				OriginUnit:    "UG-07",
			}
			processes := &mockProcessRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Process, error) { return process, nil },
			}
			svc := newPropagation(store, &mockDocumentRepo{}, &mockRecordRepo{}, processes)

			require.NoError(t, svc.FinalizeProcess(context.Background(), "p1", tt.kind))

			require.Len(t, processes.updates, 1)
			got := processes.updates[0]
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantOwner, got.CurrentOwner)
			if tt.wantWorkflow != "" {
				assert.Equal(t, tt.wantWorkflow, got.WorkflowState)
			}
			if tt.wantHandoff {
				assert.NotEmpty(t, got.HandoffNote)
			}
		})
	}
}

func TestTwoTaskProcessApprovesOnlyOnLastSignature(t *testing.T) {
	// Process P: T1 (ORDER), T2 (REGULARITY_CERTIFICATE). Signing T1 leaves
	// the process untouched; signing T2 flips it to APPROVED with
	// workflowState SIGNED_BY_FINANCE.
	t1 := pendingTask("t1", "P", entity.KindOrder)
	t2 := pendingTask("t2", "P", entity.KindRegularityCertificate)
	store := newTaskStore(t1, t2)
	process := &entity.Process{ID: "P", WorkflowState: entity.WorkflowAwaitingSignature, CurrentOwner: "SEFIN", OriginUnit: "UG-01"}
	processes := &mockProcessRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Process, error) { return process, nil },
	}
	prop := newPropagation(store, &mockDocumentRepo{}, &mockRecordRepo{}, processes)
	svc := NewSigningService(&store.mockTaskRepo, &mockDocumentRepo{}, &mockVerifier{}, prop, fixedClock{testNow}, mockLogger{})

	require.True(t, svc.Sign(context.Background(), "t1", "ana", "1234").OK)
	assert.Empty(t, processes.updates)

	require.True(t, svc.Sign(context.Background(), "t2", "ana", "1234").OK)
	require.Len(t, processes.updates, 1)
	assert.Equal(t, entity.ProcessStatusApproved, processes.updates[0].Status)
	assert.Equal(t, entity.WorkflowSignedByFinance, processes.updates[0].WorkflowState)
}

func TestSingleExceptionalAuthorizationTask(t *testing.T) {
	// Process Q with one EXCEPTIONAL_AUTHORIZATION task routes back to the
	// originating unit instead of APPROVED.
	t3 := pendingTask("t3", "Q", entity.KindExceptionalAuthorization)
	store := newTaskStore(t3)
	process := &entity.Process{ID: "Q", WorkflowState: entity.WorkflowAwaitingSignature, CurrentOwner: "SEFIN", OriginUnit: "UG-03"}
	processes := &mockProcessRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Process, error) { return process, nil },
	}
	prop := newPropagation(store, &mockDocumentRepo{}, &mockRecordRepo{}, processes)
	svc := NewSigningService(&store.mockTaskRepo, &mockDocumentRepo{}, &mockVerifier{}, prop, fixedClock{testNow}, mockLogger{})

	require.True(t, svc.Sign(context.Background(), "t3", "ana", "1234").OK)

	require.Len(t, processes.updates, 1)
	got := processes.updates[0]
	assert.Equal(t, entity.ProcessStatusAuthorizedByOrderer, got.Status)
	assert.Equal(t, "UG-03", got.CurrentOwner)
	assert.NotEqual(t, entity.WorkflowSignedByFinance, got.WorkflowState)
}

func TestFinalizeAppliedTwiceYieldsSameRow(t *testing.T) {
	store := newTaskStore(signedTask("t1", "p1", entity.KindOrder))
	process := &entity.Process{ID: "p1", WorkflowState: entity.WorkflowAwaitingSignature, CurrentOwner: "SEFIN", OriginUnit: "UG-01"}
	processes := &mockProcessRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Process, error) { return process, nil },
	}
	svc := newPropagation(store, &mockDocumentRepo{}, &mockRecordRepo{}, processes)

	require.NoError(t, svc.FinalizeProcess(context.Background(), "p1", entity.KindOrder))
	first := *processes.updates[0]
	firstUpdated := first.UpdatedAt

	require.NoError(t, svc.FinalizeProcess(context.Background(), "p1", entity.KindOrder))
	second := *processes.updates[1]

	// Absolute writes: the double finalize of the last-signer race leaves
	// the row identical.
	second.UpdatedAt = firstUpdated
	assert.Equal(t, first, second)
}

func TestCascadeRecordTimestamp(t *testing.T) {
	task := signedTask("t1", "p1", entity.KindPaymentOrder)
	store := newTaskStore(task)
	records := &mockRecordRepo{}
	svc := newPropagation(store, &mockDocumentRepo{}, records, &mockProcessRepo{})

	require.NoError(t, svc.Cascade(context.Background(), task))

	require.Len(t, records.upserts, 1)
	require.NotNil(t, records.upserts[0].SignedAt)
	assert.True(t, records.upserts[0].SignedAt.Equal(testNow))
	assert.True(t, records.upserts[0].UpdatedAt.Equal(testNow), "record timestamps come from the injected clock")
}
