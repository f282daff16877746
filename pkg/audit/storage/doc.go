// Package storage provides storage backends for validation records.
//
// # Storage Backends
//
// Two implementations of the audit.Storage interface are provided:
//
//   - SQLite: embedded database for durable validation history
//   - Memory: in-memory storage for tests and short-lived embedding
//
// The SQLite backend uses the pure-Go modernc.org/sqlite driver, so audit
// history needs no cgo and no external database.
//
// # SQLite Backend
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/validations.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Store(ctx, record)
//
//	records, err := store.Query(ctx, &audit.Query{
//	    LCReference: "LC-2024-00017",
//	    Limit:       100,
//	})
//
// WAL journaling and the busy timeout are applied through the driver DSN,
// so every pooled connection gets them. Timestamps are persisted as
// nanosecond integers, which keeps ordering exact across drivers.
//
// # Schema
//
// The schema is created on first open and its version is tracked in the
// schema_version table for future migrations. Indexes cover the common
// review queries: by time, credit reference, checker, and outcome.
package storage
