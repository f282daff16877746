// Package recorder flattens rule execution summaries into validation
// records and writes them to an audit storage backend.
//
// # Recording Flow
//
// Records are written asynchronously so catalog execution never waits on
// storage:
//
//  1. The executor evaluates the catalog and returns an execution summary
//  2. The caller hands the summary, evaluation context, and run metadata
//     to the recorder
//  3. The recorder flattens them into a validation record with a UUID id
//  4. The record is enqueued on a buffered channel (non-blocking)
//  5. A background goroutine drains the channel and writes to storage
//  6. Graceful shutdown drains the channel before exit
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	summary, err := eng.ExecuteRules(ctx, rules, ectx)
//	if err != nil {
//	    return err
//	}
//	rec.Record(ctx, &recorder.RunMetadata{
//	    LCReference:    "LC-2024-00017",
//	    CheckedBy:      "checker-7",
//	    CatalogVersion: catalog.Version(),
//	    StartedAt:      started,
//	}, ectx, summary)
//
// # Context Hashing
//
// The extracted document fields are hashed with SHA-256 so a stored record
// can be tied to the exact input it was produced from. Only the first 1MB
// of the serialized context is hashed. Hashing can be disabled via
// configuration.
//
// # Field Truncation
//
// Issue messages and rendered expected/actual values can embed long spans
// of extracted document text. The recorder truncates them to MaxFieldLength
// characters before storage; the context hash still identifies the full
// input.
package recorder
