package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// DocumentRepository implements port.DocumentRepository on sqlite
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// GetByID retrieves a document by its ID; (nil, nil) when not found
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `
		SELECT id, process_id, kind, status, signed_at, signed_by,
			signer_name, signer_role, created_at, updated_at
		FROM documents WHERE id = ?
	`

	var doc entity.Document
	var signedAt sql.NullTime
	var signedBy, signerName, signerRole sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.ProcessID,
		&doc.Kind,
		&doc.Status,
		&signedAt,
		&signedBy,
		&signerName,
		&signerRole,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.String("document_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if signedAt.Valid {
		t := signedAt.Time
		doc.SignedAt = &t
	}
	doc.SignedBy = signedBy.String
	doc.SignerName = signerName.String
	doc.SignerRole = signerRole.String

	return &doc, nil
}

// Update persists the signature fields of a document
func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET
			status = ?, signed_at = ?, signed_by = ?,
			signer_name = ?, signer_role = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.Status,
		nullTime(doc.SignedAt),
		nullString(doc.SignedBy),
		nullString(doc.SignerName),
		nullString(doc.SignerRole),
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update document", zap.String("document_id", doc.ID), zap.Error(err))
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document %s not found", doc.ID)
	}

	return nil
}
