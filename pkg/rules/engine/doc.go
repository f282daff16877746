// Package engine provides the runtime rule executor that evaluates parsed
// CRL compliance rules against extracted trade-finance document data and
// emits structured discrepancy issues.
//
// This is the core validation mechanism: each rule resolves document fields
// through dotted paths, evaluates its conditions against a closed operator
// vocabulary, and, when triggered, generates at most one issue describing
// the discrepancy. The engine is a pure evaluation library; it performs no
// OCR, no persistence, and no I/O of its own.
//
// # Evaluation Flow
//
//	EvaluationContext (extracted document fields)
//	       ↓
//	For each enabled rule:
//	  Required fields present? → No → SKIPPED
//	  Evaluate conditions in declaration order (AND)
//	    All true  → PASSED
//	    Any false → TRIGGERED → generate issue (if the rule has an action)
//	       ↓
//	Return ExecutionSummary (counters, issues, per-rule results)
//
// # Basic Usage
//
//	eng, err := engine.New(engine.DefaultConfig(),
//	    engine.WithLogger(logger),
//	    engine.WithCatalog(manager),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ec := engine.NewEvaluationContext(extractedFields)
//	summary, err := eng.ExecuteAllRules(ctx, ec)
//	if err != nil {
//	    logger.Error("rule execution failed", "error", err)
//	}
//
//	for _, issue := range summary.Issues {
//	    fmt.Printf("[%s] %s: %s\n", issue.Severity, issue.RuleID, issue.Title)
//	}
//
// # Failure Isolation
//
// Rule evaluation fails closed and never aborts a batch. A condition that
// cannot be evaluated cleanly counts as failed with the error retained on
// its result; an unexpected internal error while evaluating one rule is
// caught, recorded against that rule only, and execution of the remaining
// rules continues. No error from a single rule ever propagates out of
// ExecuteAllRules.
//
// # Thread Safety
//
// The engine holds no per-call mutable state. Concurrent calls to
// ExecuteRule and ExecuteAllRules are safe as long as each call supplies
// its own EvaluationContext.
package engine
