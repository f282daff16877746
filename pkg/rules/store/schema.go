package store

// schemaVersion is the current database schema version.
const schemaVersion = 1

// schema contains the SQL statements to create the rule record schema.
const schema = `
-- Persisted rule records table
CREATE TABLE IF NOT EXISTS rule_records (
    rule_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,

    -- Free-text classification, translated by the loader
    severity TEXT,
    domain TEXT,
    document_type TEXT,

    -- JSON blobs
    conditions TEXT,
    expected_outcome TEXT,

    is_active BOOLEAN NOT NULL DEFAULT 1,
    version TEXT,
    reference TEXT,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_rule_records_is_active ON rule_records(is_active);
CREATE INDEX IF NOT EXISTS idx_rule_records_domain ON rule_records(domain);
`

// insertSchemaVersion inserts the schema version into the schema_version table.
const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// getSchemaVersion retrieves the current schema version from the database.
const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
