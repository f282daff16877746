package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite record store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/rules.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements RecordStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens a SQLite-backed record store.
// It initializes the schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "rules.store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStoreError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite rule store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStoreError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStoreError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return NewStoreError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return NewStoreError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(getSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStoreError("sqlite", "get_schema_version", err)
	}
	if version != schemaVersion {
		return NewStoreError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", schemaVersion, version))
	}

	return nil
}

// ListActive returns all active rule records ordered by rule id.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list_active", selectRecords+" WHERE is_active = 1 ORDER BY rule_id")
}

// List returns all rule records ordered by rule id.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list", selectRecords+" ORDER BY rule_id")
}

const selectRecords = `
SELECT rule_id, title, description, severity, domain, document_type,
       conditions, expected_outcome, is_active, version, reference,
       created_at, updated_at
FROM rule_records`

func (s *SQLiteStore) list(ctx context.Context, operation, query string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewStoreError("sqlite", operation, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStoreError("sqlite", "scan", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError("sqlite", operation, err)
	}

	return records, nil
}

// Get retrieves a single record by rule id.
func (s *SQLiteStore) Get(ctx context.Context, ruleID string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+" WHERE rule_id = ?", ruleID)
	if err != nil {
		return nil, NewStoreError("sqlite", "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, NewStoreError("sqlite", "get", err)
		}
		return nil, ErrRecordNotFound
	}

	record, err := scanRecord(rows)
	if err != nil {
		return nil, NewStoreError("sqlite", "scan", err)
	}

	return record, nil
}

// Put inserts or replaces a record. CreatedAt is preserved on replace;
// UpdatedAt is set to now on every write.
func (s *SQLiteStore) Put(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStoreError("sqlite", "put", fmt.Errorf("record cannot be nil"))
	}
	if record.RuleID == "" {
		return NewStoreError("sqlite", "put", fmt.Errorf("rule_id cannot be empty"))
	}

	conditions, err := json.Marshal(record.Conditions)
	if err != nil {
		return NewStoreError("sqlite", "marshal_conditions", err)
	}

	var outcome []byte
	if record.ExpectedOutcome != nil {
		outcome, err = json.Marshal(record.ExpectedOutcome)
		if err != nil {
			return NewStoreError("sqlite", "marshal_outcome", err)
		}
	}

	now := time.Now().UTC()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO rule_records (
			rule_id, title, description, severity, domain, document_type,
			conditions, expected_outcome, is_active, version, reference,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			severity = excluded.severity,
			domain = excluded.domain,
			document_type = excluded.document_type,
			conditions = excluded.conditions,
			expected_outcome = excluded.expected_outcome,
			is_active = excluded.is_active,
			version = excluded.version,
			reference = excluded.reference,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		record.RuleID, record.Title, record.Description,
		record.Severity, record.Domain, record.DocumentType,
		string(conditions), nullableString(string(outcome)),
		record.IsActive, record.Version, record.Reference,
		createdAt, now,
	)
	if err != nil {
		return NewStoreError("sqlite", "put", err)
	}

	return nil
}

// Delete removes a record by rule id.
func (s *SQLiteStore) Delete(ctx context.Context, ruleID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rule_records WHERE rule_id = ?", ruleID)
	if err != nil {
		return NewStoreError("sqlite", "delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return NewStoreError("sqlite", "delete", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStoreError("sqlite", "close", err)
	}
	s.logger.Info("SQLite rule store closed")
	return nil
}

// scanRecord scans a database row into a Record.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var record Record
	var description, severity, domain, docType, version, reference sql.NullString
	var conditions, outcome sql.NullString

	err := rows.Scan(
		&record.RuleID, &record.Title, &description,
		&severity, &domain, &docType,
		&conditions, &outcome,
		&record.IsActive, &version, &reference,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = description.String
	record.Severity = severity.String
	record.Domain = domain.String
	record.DocumentType = docType.String
	record.Version = version.String
	record.Reference = reference.String

	if conditions.Valid && conditions.String != "" {
		if err := json.Unmarshal([]byte(conditions.String), &record.Conditions); err != nil {
			return nil, fmt.Errorf("corrupt conditions for %q: %w", record.RuleID, err)
		}
	}
	if outcome.Valid && outcome.String != "" {
		record.ExpectedOutcome = &ExpectedOutcome{}
		if err := json.Unmarshal([]byte(outcome.String), record.ExpectedOutcome); err != nil {
			return nil, fmt.Errorf("corrupt expected_outcome for %q: %w", record.RuleID, err)
		}
	}

	return &record, nil
}

// nullableString converts an empty string to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
