package database

import (
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. Versions are append-only.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_signing_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS signing_tasks (
				id TEXT PRIMARY KEY,
				document_id TEXT,
				process_id TEXT NOT NULL,
				document_kind TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING',
				assigned_to TEXT,
				signed_at DATETIME,
				signed_by TEXT,
				rejection_reason TEXT,
				protocol_number TEXT NOT NULL DEFAULT '',
				requester_name TEXT NOT NULL DEFAULT '',
				requesting_unit TEXT NOT NULL DEFAULT '',
				value REAL NOT NULL DEFAULT 0,
				process_created_at DATETIME,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_signing_tasks_process ON signing_tasks(process_id);
			CREATE INDEX IF NOT EXISTS idx_signing_tasks_status ON signing_tasks(status);
			CREATE INDEX IF NOT EXISTS idx_signing_tasks_assignee ON signing_tasks(assigned_to);
		`,
	},
	{
		Version: 2,
		Name:    "create_processes",
		SQL: `
			CREATE TABLE IF NOT EXISTS processes (
				id TEXT PRIMARY KEY,
				protocol_number TEXT NOT NULL,
				requester_name TEXT NOT NULL DEFAULT '',
				value REAL NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT '',
				workflow_state TEXT NOT NULL DEFAULT 'AWAITING_SIGNATURE',
				current_owner TEXT NOT NULL DEFAULT '',
				origin_unit TEXT NOT NULL DEFAULT '',
				handoff_note TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_documents",
		SQL: `
			CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				process_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'DRAFT',
				signed_at DATETIME,
				signed_by TEXT,
				signer_name TEXT,
				signer_role TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_documents_process ON documents(process_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_execution_records",
		SQL: `
			CREATE TABLE IF NOT EXISTS execution_records (
				id TEXT PRIMARY KEY,
				process_id TEXT NOT NULL,
				document_kind TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'DRAFT',
				signed_at DATETIME,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(process_id, document_kind)
			);
		`,
	},
	{
		Version: 5,
		Name:    "create_approvers",
		SQL: `
			CREATE TABLE IF NOT EXISTS approvers (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT '',
				daily_capacity INTEGER NOT NULL DEFAULT 0,
				credential_hash TEXT NOT NULL DEFAULT ''
			);
		`,
	},
}

// Migrator handles database migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// RunMigrations applies all pending migrations in version order.
func (m *Migrator) RunMigrations() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	pending := make([]Migration, 0, len(migrations))
	for _, mig := range migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, mig := range pending {
		if err := m.apply(mig); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("Migration applied",
			zap.Int("version", mig.Version),
			zap.String("name", mig.Name))
	}

	return nil
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) getAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(mig Migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(mig.SQL); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", mig.Version, mig.Name)
		return err
	})
}
