package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the validation history schema.
const Schema = `
-- Validation records table
CREATE TABLE IF NOT EXISTS validations (
    id TEXT PRIMARY KEY,
    validation_id TEXT NOT NULL,

    -- Timestamps (Unix nanoseconds)
    started_time INTEGER NOT NULL,
    completed_time INTEGER NOT NULL,
    recorded_time INTEGER NOT NULL,

    -- Input snapshot
    context_hash TEXT,
    document_types TEXT,
    document_count INTEGER,
    field_count INTEGER,

    -- Presentation metadata
    lc_reference TEXT,
    checked_by TEXT,
    catalog_version TEXT,

    -- Outcome counts
    total_rules INTEGER NOT NULL,
    passed INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    execution_time_ms INTEGER,

    -- Discrepancies
    outcome TEXT NOT NULL,
    issue_count INTEGER NOT NULL,
    critical_count INTEGER,
    major_count INTEGER,
    minor_count INTEGER,
    issues TEXT,

    -- Error info
    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common review queries
CREATE INDEX IF NOT EXISTS idx_validations_started_time ON validations(started_time);
CREATE INDEX IF NOT EXISTS idx_validations_validation_id ON validations(validation_id);
CREATE INDEX IF NOT EXISTS idx_validations_lc_reference ON validations(lc_reference);
CREATE INDEX IF NOT EXISTS idx_validations_checked_by ON validations(checked_by);
CREATE INDEX IF NOT EXISTS idx_validations_outcome ON validations(outcome);
CREATE INDEX IF NOT EXISTS idx_validations_issue_count ON validations(issue_count);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
