package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/saturn/pkg/audit"
)

// defaultQueryLimit caps result sets when a query carries no limit.
const defaultQueryLimit = 100

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 1 (SQLite allows one writer at a time)
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 1
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for concurrent reads.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/validations.db",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on an embedded SQLite database
// using the pure-Go modernc.org/sqlite driver.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	storeStmt *sql.Stmt
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the validation history
// database and initializes its schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, audit.NewStorageError("sqlite", "open", fmt.Errorf("database path is empty"))
	}

	// Work on a copy so zero pool and timeout values can be backfilled
	// without mutating the caller's configuration.
	conf := *config
	if conf.MaxOpenConns <= 0 {
		conf.MaxOpenConns = 1
	}
	if conf.MaxIdleConns <= 0 {
		conf.MaxIdleConns = 1
	}
	if conf.BusyTimeout <= 0 {
		conf.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	// Pragmas ride on the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", conf.Path, conf.BusyTimeout.Milliseconds())
	if conf.WALMode {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(conf.MaxOpenConns)
	db.SetMaxIdleConns(conf.MaxIdleConns)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStorage{
		db:     db,
		config: &conf,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("validation history storage initialized",
		"path", conf.Path,
		"wal_mode", conf.WALMode,
		"max_open_conns", conf.MaxOpenConns,
	)

	return s, nil
}

// initialize creates the schema and verifies the schema version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	storeStmt, err := s.db.Prepare(insertValidation)
	if err != nil {
		return audit.NewStorageError("sqlite", "prepare_store", err)
	}
	s.storeStmt = storeStmt

	return nil
}

// insertValidation is the prepared insert for validation records. Column
// order matches the schema and scanRow.
const insertValidation = `
INSERT INTO validations (
	id, validation_id,
	started_time, completed_time, recorded_time,
	context_hash, document_types, document_count, field_count,
	lc_reference, checked_by, catalog_version,
	total_rules, passed, failed, skipped, execution_time_ms,
	outcome, issue_count, critical_count, major_count, minor_count, issues,
	error
) VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
)
`

// Store persists a validation record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.ValidationRecord) error {
	if record == nil {
		return audit.NewStorageError("sqlite", "store", fmt.Errorf("nil record"))
	}

	documentTypes, _ := json.Marshal(record.DocumentTypes)
	issues, _ := json.Marshal(record.Issues)

	var errorVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.storeStmt.ExecContext(ctx,
		record.ID, record.ValidationID,
		timeToNanos(record.StartedTime), timeToNanos(record.CompletedTime), timeToNanos(record.RecordedTime),
		record.ContextHash, string(documentTypes), record.DocumentCount, record.FieldCount,
		record.LCReference, record.CheckedBy, record.CatalogVersion,
		record.TotalRules, record.Passed, record.Failed, record.Skipped, record.ExecutionTimeMS,
		record.Outcome, record.IssueCount, record.CriticalCount, record.MajorCount, record.MinorCount, string(issues),
		errorVal,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves validation records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.ValidationRecord, error) {
	if query == nil {
		query = &audit.Query{}
	}

	sqlQuery, args := buildSelectQuery(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.ValidationRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of validation records for memory-efficient
// streaming. Both channels close when the query completes or fails.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.ValidationRecord, <-chan error, error) {
	if query == nil {
		query = &audit.Query{}
	}

	recordsCh := make(chan *audit.ValidationRecord, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := buildSelectQuery(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			record, err := scanRow(rows)
			if err != nil {
				errCh <- audit.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}

	whereClause, args := buildWhereClause(query)
	sqlQuery := "SELECT COUNT(*) FROM validations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes records matching the query filters and returns the number
// deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}

	whereClause, args := buildWhereClause(query)
	sqlQuery := "DELETE FROM validations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend. Close is
// idempotent.
func (s *SQLiteStorage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.storeStmt != nil {
			s.storeStmt.Close()
		}

		if s.config.WALMode {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		}
		if err := s.db.Close(); err != nil {
			closeErr = audit.NewStorageError("sqlite", "close", err)
			return
		}

		s.logger.Info("validation history storage closed")
	})

	return closeErr
}

// buildSelectQuery builds the full SELECT statement for a query, shared by
// Query and QueryStream.
func buildSelectQuery(query *audit.Query) (string, []interface{}) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT * FROM validations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += orderClause(query)

	limit := defaultQueryLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args
}

// sortColumns is the allowlist of sortable columns. Sort input is mapped
// through it before reaching SQL.
var sortColumns = map[string]bool{
	"started_time":      true,
	"completed_time":    true,
	"recorded_time":     true,
	"issue_count":       true,
	"failed":            true,
	"total_rules":       true,
	"execution_time_ms": true,
}

// orderClause renders the ORDER BY clause, defaulting to newest first.
func orderClause(query *audit.Query) string {
	column := "started_time"
	if sortColumns[query.SortBy] {
		column = query.SortBy
	}

	order := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		order = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", column, order)
}

// buildWhereClause builds a SQL WHERE clause from the query filters.
// Returns the clause (without the WHERE keyword) and its arguments.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "started_time >= ?")
		args = append(args, timeToNanos(*query.StartTime))
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_time <= ?")
		args = append(args, timeToNanos(*query.EndTime))
	}

	if query.ValidationID != "" {
		conditions = append(conditions, "validation_id = ?")
		args = append(args, query.ValidationID)
	}
	if query.LCReference != "" {
		conditions = append(conditions, "lc_reference = ?")
		args = append(args, query.LCReference)
	}
	if query.CheckedBy != "" {
		conditions = append(conditions, "checked_by = ?")
		args = append(args, query.CheckedBy)
	}

	if query.RuleID != "" {
		conditions = append(conditions, "issues LIKE ?")
		args = append(args, "%"+query.RuleID+"%")
	}

	if query.Severity != "" {
		switch strings.ToUpper(strings.TrimSpace(query.Severity)) {
		case "CRITICAL":
			conditions = append(conditions, "critical_count > 0")
		case "MAJOR":
			conditions = append(conditions, "major_count > 0")
		case "MINOR":
			conditions = append(conditions, "minor_count > 0")
		default:
			conditions = append(conditions, "issues LIKE ?")
			args = append(args, "%"+query.Severity+"%")
		}
	}

	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}

	if query.MinIssues != nil {
		conditions = append(conditions, "issue_count >= ?")
		args = append(args, *query.MinIssues)
	}
	if query.MaxIssues != nil {
		conditions = append(conditions, "issue_count <= ?")
		args = append(args, *query.MaxIssues)
	}
	if query.MinFailed != nil {
		conditions = append(conditions, "failed >= ?")
		args = append(args, *query.MinFailed)
	}
	if query.MaxFailed != nil {
		conditions = append(conditions, "failed <= ?")
		args = append(args, *query.MaxFailed)
	}

	switch query.Status {
	case "success":
		conditions = append(conditions, "error IS NULL")
	case "error":
		conditions = append(conditions, "error IS NOT NULL")
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a ValidationRecord.
func scanRow(row *sql.Rows) (*audit.ValidationRecord, error) {
	var record audit.ValidationRecord
	var startedNs, completedNs, recordedNs int64
	var documentTypes, issues string
	var errorVal sql.NullString

	err := row.Scan(
		&record.ID, &record.ValidationID,
		&startedNs, &completedNs, &recordedNs,
		&record.ContextHash, &documentTypes, &record.DocumentCount, &record.FieldCount,
		&record.LCReference, &record.CheckedBy, &record.CatalogVersion,
		&record.TotalRules, &record.Passed, &record.Failed, &record.Skipped, &record.ExecutionTimeMS,
		&record.Outcome, &record.IssueCount, &record.CriticalCount, &record.MajorCount, &record.MinorCount, &issues,
		&errorVal,
	)
	if err != nil {
		return nil, err
	}

	record.StartedTime = nanosToTime(startedNs)
	record.CompletedTime = nanosToTime(completedNs)
	record.RecordedTime = nanosToTime(recordedNs)

	if errorVal.Valid {
		record.Error = errorVal.String
	}

	if documentTypes != "" {
		json.Unmarshal([]byte(documentTypes), &record.DocumentTypes)
	}
	if issues != "" {
		json.Unmarshal([]byte(issues), &record.Issues)
	}

	return &record, nil
}

// timeToNanos converts t to Unix nanoseconds for storage. The zero time
// maps to 0 so it survives a round trip.
func timeToNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// nanosToTime is the inverse of timeToNanos.
func nanosToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
