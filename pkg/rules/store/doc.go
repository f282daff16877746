// Package store defines the persisted rule record model and the storage
// backends that hold it.
//
// Rule records are the loosely-typed shape that external systems (review
// tooling, rule authoring UIs) write: free-text severity and domain strings,
// JSON-shaped condition lists with aliased field names. The store keeps them
// exactly as written; the loader's translation layer is responsible for
// mapping records onto the strict rule schema.
//
// # Backends
//
// SQLiteStore persists records in a SQLite database with WAL mode for
// concurrent readers. MemoryStore keeps records in a map and is intended for
// tests and embedded use.
//
// # Basic Usage
//
//	st, err := store.NewSQLiteStore(store.DefaultSQLiteConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	records, err := st.ListActive(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Both backends are safe for concurrent use. SQLiteStore relies on the
// database/sql connection pool; MemoryStore guards its map with a RWMutex.
package store
