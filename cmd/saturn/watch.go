package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/audit/retention"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/rules/gitsource"
	"mercator-hq/saturn/pkg/rules/loader"
	"mercator-hq/saturn/pkg/telemetry/health"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/telemetry/tracing"
)

var watchFlags struct {
	logLevel       string
	reloadSchedule string
	dryRun         bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the rule catalog service",
	Long: `Run the rule catalog service.

The service keeps the rule catalog loaded and current: it watches
rulebook files for changes, polls the git source for new commits,
reloads on a cron schedule, prunes the audit trail, and serves health
probes and Prometheus metrics.

Validation itself stays in one-shot invocations of "saturn check"; the
service exists so reloads, pruning and telemetry keep running between
them.

Examples:
  # Run with default config
  saturn watch

  # Run with custom config
  saturn watch --config /etc/saturn/saturn.yaml

  # Reload the catalog hourly regardless of file events
  saturn watch --reload-schedule "0 * * * *"

  # Validate config without starting the service
  saturn watch --dry-run`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	watchCmd.Flags().StringVar(&watchFlags.reloadSchedule, "reload-schedule", "", "cron schedule for periodic catalog reloads")
	watchCmd.Flags().BoolVar(&watchFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if watchFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = watchFlags.logLevel
	}

	if err := initLogging(cfg, cfg.Telemetry.Logging.Level); err != nil {
		return err
	}

	if watchFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick up trace context from the environment so catalog reloads
	// correlate with whatever orchestrator started the service.
	ctx = tracing.ExtractFromEnvironment(ctx)
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		slog.Warn("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("tracer shutdown failed", "error", err)
			}
		}()
		if tracer.Enabled() {
			slog.Debug("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
		}
	}

	// Create metrics collector when a listener port is configured
	var collector *metrics.Collector
	var loaderOpts []loader.Option
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Port > 0 {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		loaderOpts = append(loaderOpts, loader.WithMetrics(collector))
	}

	// Open the catalog and perform the initial load
	slog.Info("initializing rule catalog")
	cat, err := openCatalog(ctx, cfg, loaderOpts...)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer cat.Close()

	if _, err := cat.manager.LoadAllRules(ctx, false); err != nil {
		return cli.NewCommandError("watch", fmt.Errorf("initial catalog load failed: %w", err))
	}
	stats := cat.manager.Stats()
	fmt.Printf("✓ Catalog loaded (%d rules, version %s)\n", stats.TotalRules, stats.Version)

	errChan := make(chan error, 1)

	// Watch rulebook files for changes
	if cfg.Rules.Watch {
		watcher, err := loader.NewWatcher(&loader.WatcherConfig{
			Paths:      cat.paths,
			Extensions: cfg.Rules.AllowedExtensions,
			SkipHidden: cfg.Rules.SkipHidden,
		}, slog.Default())
		if err != nil {
			return cli.NewCommandError("watch", fmt.Errorf("failed to create file watcher: %w", err))
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, func() error {
				return cat.manager.Reload(ctx)
			}); err != nil {
				errChan <- fmt.Errorf("file watcher error: %w", err)
			}
		}()
		fmt.Printf("✓ Watching %d rulebook path(s)\n", len(cat.paths))
	}

	// Periodic reloads on a cron schedule
	if watchFlags.reloadSchedule != "" {
		scheduler := loader.NewScheduler(cat.manager, watchFlags.reloadSchedule)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("watch", fmt.Errorf("failed to start reload scheduler: %w", err))
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			fmt.Printf("✓ Scheduled reloads (next at %s)\n", next.Format(time.RFC3339))
		}
	}

	// Poll the git source for new rulebook commits
	if cat.repo != nil && cfg.Rules.Git.Poll.Enabled {
		gitWatcher := gitsource.NewWatcher(
			cat.repo,
			cfg.Rules.Git.Poll.Interval,
			cfg.Rules.Git.Poll.Timeout,
			func(rulebookPath string) error {
				return cat.manager.Reload(ctx)
			},
		)
		gitWatcher.SetLogger(slog.Default())
		if err := gitWatcher.Start(ctx); err != nil {
			return cli.NewCommandError("watch", fmt.Errorf("failed to start git polling: %w", err))
		}
		defer gitWatcher.Stop()
		fmt.Printf("✓ Polling %s every %s\n", cfg.Rules.Git.Repository, cfg.Rules.Git.Poll.Interval)
	}

	// Prune old audit records on schedule
	if cfg.Audit.Enabled && cfg.Audit.Backend == "sqlite" && cfg.Audit.Retention.PruneSchedule != "" {
		auditStorage, err := openAuditStorage(cfg)
		if err != nil {
			slog.Warn("audit retention disabled", "error", err)
		} else {
			defer auditStorage.Close()
			pruner := retention.NewPruner(auditStorage, &retention.Config{
				RetentionDays:       cfg.Audit.Retention.Days,
				PruneSchedule:       cfg.Audit.Retention.PruneSchedule,
				ArchiveBeforeDelete: cfg.Audit.Retention.ArchiveBeforeDelete,
				ArchivePath:         cfg.Audit.Retention.ArchivePath,
				MaxRecords:          cfg.Audit.Retention.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("audit retention scheduler started", "next_pruning", next)
				}
				fmt.Println("✓ Audit retention scheduled")
			}
		}
	}

	// Serve health probes and metrics when a port is configured
	var srv *http.Server
	if cfg.Telemetry.Metrics.Port > 0 {
		mux := http.NewServeMux()
		if collector != nil {
			mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		}
		if cfg.Telemetry.Health.Enabled {
			checker := health.New(cfg.Telemetry.Health.CheckTimeout)
			checker.RegisterCheck("rules_catalog", func(ctx context.Context) error {
				return cat.manager.LastLoadError()
			})
			if cat.repo != nil {
				checker.RegisterInformational("git_remote", func(ctx context.Context) error {
					_, err := cat.repo.GetCurrentCommit()
					return err
				})
			}
			health.HTTPMiddleware(mux, checker, Version, GitCommit, BuildDate)
		}

		srv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Telemetry.Metrics.Port),
			Handler: mux,
		}
		go func() {
			slog.Info("starting telemetry server", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("telemetry server error: %w", err)
			}
		}()

		fmt.Println()
		fmt.Printf("✓ Telemetry listening on %s\n", srv.Addr)
		fmt.Printf("✓ Health endpoint: http://localhost%s/health\n", srv.Addr)
		if collector != nil {
			fmt.Printf("✓ Metrics endpoint: http://localhost%s%s\n", srv.Addr, cfg.Telemetry.Metrics.Path)
		}
	}

	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or component error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("watch", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if srv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown failed", "error", err)
				return cli.NewCommandError("watch", err)
			}
		}

		fmt.Println("✓ Service stopped")
		return nil
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Mercator Saturn v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("rulebook paths configured", "count", len(cfg.Rules.Paths))

	if cfg.Rules.Git.Enabled {
		slog.Debug("git source enabled", "repository", cfg.Rules.Git.Repository, "branch", cfg.Rules.Git.Branch)
	}
	if cfg.Rules.Store.Enabled {
		slog.Debug("record store enabled", "path", cfg.Rules.Store.SQLite.Path)
	}
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
}
