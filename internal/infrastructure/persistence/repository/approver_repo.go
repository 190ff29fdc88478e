package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// ApproverRepository implements port.ApproverRepository on sqlite
type ApproverRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new approver repository
func NewApproverRepository(db *sql.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{db: db, logger: logger}
}

// GetByID retrieves an approver by its ID; (nil, nil) when not found
func (r *ApproverRepository) GetByID(ctx context.Context, id string) (*entity.Approver, error) {
	query := `SELECT id, name, role, daily_capacity FROM approvers WHERE id = ?`

	var a entity.Approver
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Role, &a.DailyCapacity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approver", zap.String("approver_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approver: %w", err)
	}

	return &a, nil
}

// List retrieves all approvers in stable id order
func (r *ApproverRepository) List(ctx context.Context) ([]*entity.Approver, error) {
	query := `SELECT id, name, role, daily_capacity FROM approvers ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list approvers", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	var approvers []*entity.Approver
	for rows.Next() {
		var a entity.Approver
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.DailyCapacity); err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		approvers = append(approvers, &a)
	}
	return approvers, rows.Err()
}
