package metrics

import (
	"fmt"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Benchmark_Collector_RecordValidation benchmarks validation recording
func Benchmark_Collector_RecordValidation(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordValidation("discrepant", "success", 120*time.Millisecond, 86, 3)
	}
}

// Benchmark_Collector_RecordValidation_Parallel benchmarks parallel validation recording
func Benchmark_Collector_RecordValidation_Parallel(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordValidation("discrepant", "success", 120*time.Millisecond, 86, 3)
		}
	})
}

// Benchmark_Collector_RecordRuleExecution benchmarks rule execution recording
func Benchmark_Collector_RecordRuleExecution(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRuleExecution("UCP600-18B", engine.OutcomePassed, 100*time.Microsecond)
	}
}

// Benchmark_Collector_RecordRuleExecution_Parallel benchmarks parallel rule execution recording
func Benchmark_Collector_RecordRuleExecution_Parallel(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordRuleExecution("UCP600-18B", engine.OutcomePassed, 100*time.Microsecond)
		}
	})
}

// Benchmark_Collector_RecordIssue benchmarks issue recording
func Benchmark_Collector_RecordIssue(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordIssue(ast.SeverityMajor)
	}
}

// Benchmark_Collector_RecordReload benchmarks catalog reload recording
func Benchmark_Collector_RecordReload(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordReload("success", 40*time.Millisecond)
	}
}

// Benchmark_Collector_UpdateSourceHealth benchmarks health updates
func Benchmark_Collector_UpdateSourceHealth(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.UpdateSourceHealth("git", true)
	}
}

// Benchmark_Collector_RecordCacheHit benchmarks cache hit recording
func Benchmark_Collector_RecordCacheHit(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordCacheHit("catalog")
	}
}

// Benchmark_RuleMetrics_RecordExecution benchmarks raw rule metric recording
func Benchmark_RuleMetrics_RecordExecution(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	rm := NewRuleMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rm.RecordExecution("UCP600-18B", "passed", 100*time.Microsecond)
	}
}

// Benchmark_ValidationMetrics_RecordValidation benchmarks raw validation recording
func Benchmark_ValidationMetrics_RecordValidation(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	vm := NewValidationMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.RecordValidation("discrepant", "success", 120*time.Millisecond, 86)
	}
}

// Benchmark_ValidationMetrics_RecordRuleResults benchmarks per-result counting
func Benchmark_ValidationMetrics_RecordRuleResults(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	vm := NewValidationMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.RecordRuleResults(80, 4, 2)
	}
}

// Benchmark_IssueMetrics_RecordIssue benchmarks raw issue recording
func Benchmark_IssueMetrics_RecordIssue(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	im := NewIssueMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		im.RecordIssue("major")
	}
}

// Benchmark_SourceMetrics_RecordSync benchmarks sync recording
func Benchmark_SourceMetrics_RecordSync(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	sm := NewSourceMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sm.RecordSync("git", 800*time.Millisecond)
	}
}

// Benchmark_CacheMetrics_RecordHit benchmarks cache hit recording
func Benchmark_CacheMetrics_RecordHit(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	cm := NewCacheMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cm.RecordHit("catalog")
	}
}

// Benchmark_CardinalityLimiter_Allow benchmarks cardinality checking
func Benchmark_CardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("label1")
	}
}

// Benchmark_CardinalityLimiter_Allow_New benchmarks cardinality checking with new labels
func Benchmark_CardinalityLimiter_Allow_New(b *testing.B) {
	limiter := NewCardinalityLimiter(100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(fmt.Sprintf("label%d", i))
	}
}

// Benchmark_Collector_Disabled benchmarks metrics when disabled
func Benchmark_Collector_Disabled(b *testing.B) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordValidation("discrepant", "success", 120*time.Millisecond, 86, 3)
	}
}

// Benchmark_Collector_ManyRules benchmarks recording with many different rule IDs
func Benchmark_Collector_ManyRules(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	ruleIDs := []string{"UCP600-14D", "UCP600-18B", "UCP600-20A", "ISBP-A12", "ISBP-C7"}
	outcomes := []engine.RuleOutcome{engine.OutcomePassed, engine.OutcomeTriggered, engine.OutcomeSkipped}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ruleID := ruleIDs[i%len(ruleIDs)]
		outcome := outcomes[i%len(outcomes)]
		collector.RecordRuleExecution(ruleID, outcome, 100*time.Microsecond)
	}
}

// Benchmark_Collector_AllMetrics benchmarks recording all metric types
func Benchmark_Collector_AllMetrics(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Record validation run
		collector.RecordValidation("discrepant", "success", 120*time.Millisecond, 86, 3)

		// Record rule execution
		collector.RecordRuleExecution("UCP600-18B", engine.OutcomeTriggered, 100*time.Microsecond)

		// Record issue
		collector.RecordIssue(ast.SeverityCritical)

		// Record cache hit
		collector.RecordCacheHit("catalog")
	}
}
