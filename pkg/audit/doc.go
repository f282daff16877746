// Package audit provides a persistent history of document validation runs.
// Every execution of the rule catalog against a presentation can be recorded
// as an immutable validation record for compliance review and dispute
// handling.
//
// # Architecture
//
// The audit system consists of three layers:
//
//  1. Recorder - Flattens execution summaries into validation records
//  2. Storage Backend - Persists validation records (SQLite, in-memory)
//  3. Retention and Export - Prunes old records and renders reports
//
// # Validation Records
//
// Each validation record captures:
//   - Run identity (UUID record id, caller-supplied validation id)
//   - Input snapshot (SHA-256 context hash, document types, field count)
//   - Presentation metadata (letter of credit reference, checker identity)
//   - The rule catalog version that was active during the run
//   - Outcome counts (total, passed, failed, skipped, execution time)
//   - Flattened discrepancy issues with severity tallies
//
// # Recording Flow
//
// Records are written asynchronously so validation latency never depends on
// storage latency:
//
//	Execute Catalog → Execution Summary
//	     ↓
//	Recorder (async)
//	     ↓
//	Flatten Summary → Validation Record
//	     ↓
//	Hash Evaluation Context
//	     ↓
//	Storage Backend (SQLite, WAL mode)
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/validations.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	summary, err := eng.ExecuteRules(ctx, rules, ectx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec.Record(ctx, &recorder.RunMetadata{
//	    LCReference:    "LC-2024-00017",
//	    CheckedBy:      "checker-7",
//	    CatalogVersion: catalog.Version(),
//	}, ectx, summary)
//
// # Querying History
//
//	q := &audit.Query{
//	    LCReference: "LC-2024-00017",
//	    Outcome:     audit.OutcomeDiscrepant,
//	    Limit:       50,
//	}
//	records, err := store.Query(ctx, q)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exporter := export.NewJSONExporter(true)
//	exporter.Export(ctx, records, os.Stdout)
//
// # Retention
//
// History can be pruned automatically by age or total record count:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *",
//	})
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Thread Safety
//
// All audit types are safe for concurrent use. The recorder serializes
// writes through a buffered channel, and both storage backends guard their
// state internally.
package audit
