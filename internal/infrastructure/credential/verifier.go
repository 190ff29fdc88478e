// Package credential provides the store-backed signing-PIN verifier.
package credential

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
)

// Verifier checks a signing credential against the hash stored on the
// approver row. A missing approver or empty stored hash verifies as false,
// never as an error.
type Verifier struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVerifier creates a new credential verifier
func NewVerifier(db *sql.DB, logger *zap.Logger) port.CredentialVerifier {
	return &Verifier{db: db, logger: logger}
}

// Verify compares the credential's digest with the stored hash in constant
// time.
func (v *Verifier) Verify(ctx context.Context, approverID, credential string) (bool, error) {
	var stored string
	err := v.db.QueryRowContext(ctx,
		"SELECT credential_hash FROM approvers WHERE id = ?", approverID,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		v.logger.Error("Failed to load credential hash",
			zap.String("approver_id", approverID),
			zap.Error(err))
		return false, fmt.Errorf("failed to load credential hash: %w", err)
	}
	if stored == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(HashCredential(credential))) == 1, nil
}

// HashCredential returns the hex digest stored for a signing credential.
func HashCredential(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}
