package main

import (
	"testing"
	"time"
)

func resetBenchFlags() {
	benchFlags.contextFile = ""
	benchFlags.iterations = 100
	benchFlags.concurrency = 1
	benchFlags.categories = nil
}

func TestLatencyStats(t *testing.T) {
	// 100ms down to 1ms, reversed so the stats have to sort.
	latencies := make([]time.Duration, 0, 100)
	for i := 100; i >= 1; i-- {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	min, mean, median, p95, p99, max := latencyStats(latencies)

	if min != 1*time.Millisecond {
		t.Errorf("min = %v, want %v", min, 1*time.Millisecond)
	}
	if max != 100*time.Millisecond {
		t.Errorf("max = %v, want %v", max, 100*time.Millisecond)
	}
	if mean != 50500*time.Microsecond {
		t.Errorf("mean = %v, want %v", mean, 50500*time.Microsecond)
	}
	if median != 51*time.Millisecond {
		t.Errorf("median = %v, want %v", median, 51*time.Millisecond)
	}
	if p95 != 96*time.Millisecond {
		t.Errorf("p95 = %v, want %v", p95, 96*time.Millisecond)
	}
	if p99 != 100*time.Millisecond {
		t.Errorf("p99 = %v, want %v", p99, 100*time.Millisecond)
	}
}

func TestLatencyStatsEmpty(t *testing.T) {
	min, mean, median, p95, p99, max := latencyStats(nil)
	if min != 0 || mean != 0 || median != 0 || p95 != 0 || p99 != 0 || max != 0 {
		t.Error("latencyStats(nil) should return zero values")
	}
}

func TestRunBench(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"
	resetBenchFlags()
	benchFlags.contextFile = "testdata/context-compliant.json"
	benchFlags.iterations = 10
	benchFlags.concurrency = 2

	err := runBench(nil, []string{})
	if err != nil {
		t.Errorf("runBench() returned error: %v", err)
	}
}

func TestRunBenchRejectsBadFlags(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"

	resetBenchFlags()
	benchFlags.contextFile = "testdata/context-compliant.json"
	benchFlags.iterations = 0
	if err := runBench(nil, []string{}); err == nil {
		t.Error("runBench() with zero iterations should return error")
	}

	resetBenchFlags()
	benchFlags.contextFile = "testdata/context-compliant.json"
	benchFlags.concurrency = 0
	if err := runBench(nil, []string{}); err == nil {
		t.Error("runBench() with zero concurrency should return error")
	}

	resetBenchFlags()
	benchFlags.contextFile = "testdata/context-compliant.json"
	benchFlags.categories = []string{"NOT_A_CATEGORY"}
	if err := runBench(nil, []string{}); err == nil {
		t.Error("runBench() with unknown category should return error")
	}
}
