package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// ExecutionRecordRepository implements port.ExecutionRecordRepository on
// sqlite. Records are unique per (process_id, document_kind), which makes the
// upsert the idempotent write the cascade relies on.
type ExecutionRecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExecutionRecordRepository creates a new execution record repository
func NewExecutionRecordRepository(db *sql.DB, logger *zap.Logger) port.ExecutionRecordRepository {
	return &ExecutionRecordRepository{db: db, logger: logger}
}

// GetByProcessKind retrieves the record for the pair; (nil, nil) when not found
func (r *ExecutionRecordRepository) GetByProcessKind(ctx context.Context, processID, documentKind string) (*entity.ExecutionRecord, error) {
	query := `
		SELECT id, process_id, document_kind, status, signed_at, updated_at
		FROM execution_records
		WHERE process_id = ? AND document_kind = ?
	`

	var rec entity.ExecutionRecord
	var signedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, processID, documentKind).Scan(
		&rec.ID,
		&rec.ProcessID,
		&rec.DocumentKind,
		&rec.Status,
		&signedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get execution record",
			zap.String("process_id", processID),
			zap.String("document_kind", documentKind),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get execution record: %w", err)
	}

	if signedAt.Valid {
		t := signedAt.Time
		rec.SignedAt = &t
	}

	return &rec, nil
}

// Upsert inserts or updates the record keyed by (process_id, document_kind)
func (r *ExecutionRecordRepository) Upsert(ctx context.Context, record *entity.ExecutionRecord) error {
	query := `
		INSERT INTO execution_records (id, process_id, document_kind, status, signed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(process_id, document_kind) DO UPDATE SET
			status = excluded.status,
			signed_at = excluded.signed_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.ProcessID,
		record.DocumentKind,
		record.Status,
		nullTime(record.SignedAt),
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert execution record",
			zap.String("process_id", record.ProcessID),
			zap.String("document_kind", record.DocumentKind),
			zap.Error(err))
		return fmt.Errorf("failed to upsert execution record: %w", err)
	}

	return nil
}
