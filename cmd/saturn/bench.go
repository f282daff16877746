package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/engine"
)

var benchFlags struct {
	contextFile string
	iterations  int
	concurrency int
	categories  []string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark rule execution",
	Long: `Benchmark rule execution against a presentation context.

The bench command loads the rule catalog once, then executes the full
catalog against the given context repeatedly and reports latency
percentiles. Runs never touch the audit trail.

Metrics Collected:
  - Run throughput (runs/sec)
  - Latency percentiles (p50, p95, p99, max)
  - Rule and issue counts per run

Examples:
  # Benchmark with defaults (100 runs)
  saturn bench --context presentation.json

  # Heavier load with 4 workers
  saturn bench --context presentation.json --iterations 1000 --concurrency 4

  # Benchmark one category
  saturn bench --context presentation.json --category UCP600`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchFlags.contextFile, "context", "", "presentation context file (JSON)")
	benchCmd.Flags().IntVar(&benchFlags.iterations, "iterations", 100, "number of validation runs")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 1, "concurrent workers")
	benchCmd.Flags().StringSliceVar(&benchFlags.categories, "category", nil, "restrict to categories (repeatable)")
	_ = benchCmd.MarkFlagRequired("context")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	categories, err := parseCategories(benchFlags.categories)
	if err != nil {
		return err
	}

	if benchFlags.iterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}
	if benchFlags.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	data, err := os.ReadFile(benchFlags.contextFile)
	if err != nil {
		return fmt.Errorf("failed to read context file: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse context file: %w", err)
	}

	ctx := context.Background()

	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("bench", err)
	}
	defer cat.Close()

	if _, err := cat.manager.LoadAllRules(ctx, false); err != nil {
		return cli.NewCommandError("bench", fmt.Errorf("failed to load rules: %w", err))
	}
	stats := cat.manager.Stats()

	eng, err := engine.New(&engine.Config{
		DefaultSimilarityThreshold: cfg.Engine.DefaultSimilarityThreshold,
		MaxRegexLength:             cfg.Engine.MaxRegexLength,
	}, engine.WithCatalog(cat.manager))
	if err != nil {
		return cli.NewCommandError("bench", fmt.Errorf("failed to create engine: %w", err))
	}

	fmt.Println("Saturn Benchmark")
	fmt.Println("================")
	fmt.Printf("Context: %s\n", benchFlags.contextFile)
	fmt.Printf("Catalog: %d rules (version %s)\n", stats.TotalRules, stats.Version)
	fmt.Printf("Iterations: %d\n", benchFlags.iterations)
	fmt.Printf("Concurrency: %d\n", benchFlags.concurrency)
	fmt.Println()

	// Warm run so catalog and regex compilation costs stay out of the
	// timed runs.
	warmup := engine.NewEvaluationContext(fields)
	warmup.ValidationID = uuid.New().String()
	if _, err := eng.ExecuteAllRules(ctx, warmup, categories...); err != nil {
		return cli.NewCommandError("bench", fmt.Errorf("warmup run failed: %w", err))
	}

	fmt.Println("Running...")
	fmt.Println()

	results := runBenchRuns(ctx, eng, fields, categories)

	displayBenchResults(results)

	return nil
}

type benchResults struct {
	totalRuns   int
	completed   int
	failed      int
	discrepant  int
	totalIssues int64
	duration    time.Duration
	latencies   []time.Duration
	firstErr    error
}

func runBenchRuns(ctx context.Context, eng *engine.Engine, fields map[string]any, categories []ast.Category) *benchResults {
	results := &benchResults{
		totalRuns: benchFlags.iterations,
		latencies: make([]time.Duration, 0, benchFlags.iterations),
	}

	var (
		next       int64
		completed  int64
		failed     int64
		discrepant int64
		issues     int64
		mu         sync.Mutex
		errOnce    sync.Once
	)

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(benchFlags.iterations))

	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < benchFlags.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n := atomic.AddInt64(&next, 1)
				if n > int64(benchFlags.iterations) {
					return
				}

				ec := engine.NewEvaluationContext(fields)
				ec.ValidationID = uuid.New().String()

				runStart := time.Now()
				summary, err := eng.ExecuteAllRules(ctx, ec, categories...)
				latency := time.Since(runStart)

				if err != nil {
					atomic.AddInt64(&failed, 1)
					errOnce.Do(func() { results.firstErr = err })
				} else {
					atomic.AddInt64(&completed, 1)
					if summary.HasIssues() {
						atomic.AddInt64(&discrepant, 1)
					}
					atomic.AddInt64(&issues, int64(len(summary.Issues)))

					mu.Lock()
					results.latencies = append(results.latencies, latency)
					mu.Unlock()
				}

				progress.Update(atomic.LoadInt64(&completed) + atomic.LoadInt64(&failed))
			}
		}()
	}
	wg.Wait()
	progress.Finish()

	results.duration = time.Since(start)
	results.completed = int(atomic.LoadInt64(&completed))
	results.failed = int(atomic.LoadInt64(&failed))
	results.discrepant = int(atomic.LoadInt64(&discrepant))
	results.totalIssues = atomic.LoadInt64(&issues)

	return results
}

func displayBenchResults(results *benchResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Runs:            %d total, %d completed, %d failed\n",
		results.totalRuns, results.completed, results.failed)
	fmt.Printf("Duration:        %.1fs\n", results.duration.Seconds())

	if results.completed > 0 {
		throughput := float64(results.completed) / results.duration.Seconds()
		fmt.Printf("Throughput:      %.2f runs/s\n", throughput)
		fmt.Printf("Outcomes:        %d compliant, %d discrepant\n",
			results.completed-results.discrepant, results.discrepant)
		fmt.Printf("Issues:          %.1f per run\n",
			float64(results.totalIssues)/float64(results.completed))
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := latencyStats(results.latencies)

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.2fms\n", float64(min.Microseconds())/1000)
		fmt.Printf("  Mean:    %.2fms\n", float64(mean.Microseconds())/1000)
		fmt.Printf("  Median:  %.2fms\n", float64(median.Microseconds())/1000)
		fmt.Printf("  p95:     %.2fms\n", float64(p95.Microseconds())/1000)
		fmt.Printf("  p99:     %.2fms\n", float64(p99.Microseconds())/1000)
		fmt.Printf("  Max:     %.2fms\n", float64(max.Microseconds())/1000)
	}

	if results.failed > 0 && results.firstErr != nil {
		fmt.Println()
		fmt.Printf("First error: %v\n", results.firstErr)
	}
}

func latencyStats(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[int(float64(len(sorted))*0.95)]
	p99 = sorted[int(float64(len(sorted))*0.99)]

	return
}
