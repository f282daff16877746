// Package loader assembles the rule catalog the engine executes against.
//
// Rules come from two origins: declarative YAML rulebooks on disk and
// persisted rule records in an external store. The loader reads both,
// translates store records into the strict rule schema, merges the origins
// into one catalog keyed by rule id, and caches the result until a reload.
//
// # Core Components
//
// Manager is the orchestrator. It owns the load pipeline, serves catalog
// queries, and serializes reloads so concurrent callers always see either
// the previous complete catalog or the next one, never a partial state.
//
// FileLoader handles file system discovery and per-file checks, supporting
// both single rulebook files and directory trees.
//
// Registry is the thread-safe in-memory catalog with wholesale replacement
// for atomic reloads and a content-derived version string.
//
// Watcher monitors rulebook files with debouncing and triggers reloads.
// Scheduler runs periodic reloads on a cron expression, picking up store
// changes that produce no file system events.
//
// # Basic Usage
//
//	cfg := loader.DefaultConfig()
//	cfg.Paths = []string{"rules/"}
//
//	mgr, err := loader.NewManager(cfg, loader.WithStore(recordStore))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rules, err := mgr.LoadAllRules(ctx, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("catalog holds %d rules\n", len(rules))
//
// Manager satisfies the engine's Catalog interface, so it can be handed to
// the engine directly:
//
//	eng, err := engine.New(nil, engine.WithCatalog(mgr))
//
// # Failure Tolerance
//
// Loading is best-effort by contract. A malformed rulebook file is logged
// and skipped; the remaining files still load. A store record that cannot
// be translated is logged and skipped; the remaining records still load.
// A reload that fails outright leaves the previous catalog in place.
//
// # Thread Safety
//
// All catalog queries are safe for concurrent use. Loads and reloads are
// serialized under the manager mutex; queries read a consistent registry
// snapshot and never block behind a running reload's file I/O.
package loader
