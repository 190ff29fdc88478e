package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// TaskRepository implements port.TaskRepository on sqlite
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) port.TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `
	id, document_id, process_id, document_kind, status, assigned_to,
	signed_at, signed_by, rejection_reason,
	protocol_number, requester_name, requesting_unit, value, process_created_at,
	created_at, updated_at
`

// Create inserts a new signing task
func (r *TaskRepository) Create(ctx context.Context, task *entity.SigningTask) error {
	query := `
		INSERT INTO signing_tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		nullString(task.DocumentID),
		task.ProcessID,
		task.DocumentKind,
		task.Status,
		nullString(task.AssignedTo),
		nullTime(task.SignedAt),
		nullString(task.SignedBy),
		nullString(task.RejectionReason),
		task.ProtocolNumber,
		task.RequesterName,
		task.RequestingUnit,
		task.Value,
		task.ProcessCreatedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create signing task",
			zap.String("task_id", task.ID),
			zap.String("process_id", task.ProcessID),
			zap.Error(err))
		return fmt.Errorf("failed to create signing task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID; (nil, nil) when not found
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.SigningTask, error) {
	query := `SELECT ` + taskColumns + ` FROM signing_tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get signing task", zap.String("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get signing task: %w", err)
	}
	return task, nil
}

// ListPending retrieves pending tasks matching the filter, oldest first
func (r *TaskRepository) ListPending(ctx context.Context, filter port.TaskFilter) ([]*entity.SigningTask, error) {
	query := `SELECT ` + taskColumns + ` FROM signing_tasks WHERE status = ?`
	args := []interface{}{entity.TaskStatusPending}

	if filter.ProcessID != "" {
		query += " AND process_id = ?"
		args = append(args, filter.ProcessID)
	}
	if filter.DocumentKind != "" {
		query += " AND document_kind = ?"
		args = append(args, filter.DocumentKind)
	}
	if filter.AssignedTo != "" {
		query += " AND assigned_to = ?"
		args = append(args, filter.AssignedTo)
	}
	query += " ORDER BY created_at ASC"

	return r.queryTasks(ctx, query, args...)
}

// ListByProcess retrieves every task referencing the process
func (r *TaskRepository) ListByProcess(ctx context.Context, processID string) ([]*entity.SigningTask, error) {
	query := `SELECT ` + taskColumns + ` FROM signing_tasks WHERE process_id = ? ORDER BY created_at ASC`
	return r.queryTasks(ctx, query, processID)
}

// ListByApprover retrieves every task ever assigned to the approver
func (r *TaskRepository) ListByApprover(ctx context.Context, approverID string) ([]*entity.SigningTask, error) {
	query := `SELECT ` + taskColumns + ` FROM signing_tasks WHERE assigned_to = ? ORDER BY created_at ASC`
	return r.queryTasks(ctx, query, approverID)
}

// Update persists all mutable task fields
func (r *TaskRepository) Update(ctx context.Context, task *entity.SigningTask) error {
	query := `
		UPDATE signing_tasks SET
			status = ?, assigned_to = ?, signed_at = ?, signed_by = ?,
			rejection_reason = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Status,
		nullString(task.AssignedTo),
		nullTime(task.SignedAt),
		nullString(task.SignedBy),
		nullString(task.RejectionReason),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update signing task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to update signing task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("signing task %s not found", task.ID)
	}

	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*entity.SigningTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query signing tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to query signing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.SigningTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signing task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*entity.SigningTask, error) {
	var task entity.SigningTask
	var documentID, assignedTo, signedBy, rejectionReason sql.NullString
	var signedAt, processCreatedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&documentID,
		&task.ProcessID,
		&task.DocumentKind,
		&task.Status,
		&assignedTo,
		&signedAt,
		&signedBy,
		&rejectionReason,
		&task.ProtocolNumber,
		&task.RequesterName,
		&task.RequestingUnit,
		&task.Value,
		&processCreatedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DocumentID = documentID.String
	task.AssignedTo = assignedTo.String
	task.SignedBy = signedBy.String
	task.RejectionReason = rejectionReason.String
	if signedAt.Valid {
		t := signedAt.Time
		task.SignedAt = &t
	}
	if processCreatedAt.Valid {
		task.ProcessCreatedAt = processCreatedAt.Time
	}

	return &task, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
