package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// ProcessRepository implements port.ProcessRepository on sqlite
type ProcessRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProcessRepository creates a new process repository
func NewProcessRepository(db *sql.DB, logger *zap.Logger) port.ProcessRepository {
	return &ProcessRepository{db: db, logger: logger}
}

// GetByID retrieves a process by its ID; (nil, nil) when not found
func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*entity.Process, error) {
	query := `
		SELECT id, protocol_number, requester_name, value, status,
			workflow_state, current_owner, origin_unit, handoff_note,
			created_at, updated_at
		FROM processes WHERE id = ?
	`

	var p entity.Process
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.ProtocolNumber,
		&p.RequesterName,
		&p.Value,
		&p.Status,
		&p.WorkflowState,
		&p.CurrentOwner,
		&p.OriginUnit,
		&p.HandoffNote,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get process", zap.String("process_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get process: %w", err)
	}

	return &p, nil
}

// Update persists the routable process fields
func (r *ProcessRepository) Update(ctx context.Context, process *entity.Process) error {
	query := `
		UPDATE processes SET
			status = ?, workflow_state = ?, current_owner = ?,
			handoff_note = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		process.Status,
		process.WorkflowState,
		process.CurrentOwner,
		process.HandoffNote,
		process.UpdatedAt,
		process.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update process", zap.String("process_id", process.ID), zap.Error(err))
		return fmt.Errorf("failed to update process: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("process %s not found", process.ID)
	}

	return nil
}
