package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/gitsource"
	"mercator-hq/saturn/pkg/rules/loader"
	"mercator-hq/saturn/pkg/rules/store"
)

var rulesFlags struct {
	category    string
	severity    string
	enabledOnly bool
	format      string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the rule catalog",
	Long: `Inspect the rule catalog assembled from the configured sources.

The catalog is loaded exactly as the engine would load it: rulebook files
from the configured paths, persisted records from the rule store, and a
git checkout when a git source is configured.

Subcommands:
  list   - List catalog rules with optional filters
  stats  - Show catalog statistics

Examples:
  # List every rule
  saturn rules list

  # List enabled UCP600 rules
  saturn rules list --category UCP600 --enabled-only

  # Catalog statistics as JSON
  saturn rules stats --format json`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog rules",
	Long: `List the rules in the catalog with optional filters.

Examples:
  # All rules
  saturn rules list

  # Critical cross-document rules only
  saturn rules list --category CROSS_DOCUMENT --severity CRITICAL

  # JSON output
  saturn rules list --format json`,
	RunE: listRules,
}

var rulesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long: `Show statistics for the loaded rule catalog: totals, rules per
category and severity, and the origin split between rulebook files and
persisted store records.`,
	RunE: showRuleStats,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesStatsCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json")

	rulesListCmd.Flags().StringVar(&rulesFlags.category, "category", "", "filter by category (UCP600, ISBP, CROSS_DOCUMENT, EXTRACTION, SANCTIONS, CUSTOM)")
	rulesListCmd.Flags().StringVar(&rulesFlags.severity, "severity", "", "filter by severity (CRITICAL, MAJOR, MINOR)")
	rulesListCmd.Flags().BoolVar(&rulesFlags.enabledOnly, "enabled-only", false, "show enabled rules only")
}

// catalog bundles the rule manager with the sources it was built from, so
// one-shot commands can close them and watch mode can wire watchers to them.
type catalog struct {
	manager *loader.Manager
	store   store.RecordStore
	repo    *gitsource.Repository
	paths   []string
}

// openCatalog assembles the rule manager from every configured source: the
// local rulebook paths, the persisted rule store when enabled, and a git
// checkout when a git source is configured.
func openCatalog(ctx context.Context, cfg *config.Config, opts ...loader.Option) (*catalog, error) {
	paths := append([]string(nil), cfg.Rules.Paths...)

	var repo *gitsource.Repository
	if cfg.Rules.Git.Enabled {
		var err error
		repo, err = gitsource.NewRepository(gitsourceConfig(&cfg.Rules.Git))
		if err != nil {
			return nil, cli.NewCommandError("rules", fmt.Errorf("failed to open git source: %w", err))
		}
		if err := repo.Clone(ctx); err != nil {
			return nil, cli.NewCommandError("rules", fmt.Errorf("failed to clone git source: %w", err))
		}
		paths = append(paths, repo.GetRulebookPath())
	}

	loaderOpts := append([]loader.Option{loader.WithLogger(slog.Default())}, opts...)

	var recordStore store.RecordStore
	if cfg.Rules.Store.Enabled {
		st, err := store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Rules.Store.SQLite.Path,
			MaxOpenConns: cfg.Rules.Store.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Rules.Store.SQLite.MaxIdleConns,
			WALMode:      cfg.Rules.Store.SQLite.WALMode,
			BusyTimeout:  cfg.Rules.Store.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, cli.NewCommandError("rules", fmt.Errorf("failed to open rule store: %w", err))
		}
		recordStore = st
		loaderOpts = append(loaderOpts, loader.WithStore(st))
	}

	mgr, err := loader.NewManager(&loader.Config{
		Paths:             paths,
		MaxFileSize:       cfg.Rules.MaxFileSize,
		AllowedExtensions: cfg.Rules.AllowedExtensions,
		FollowSymlinks:    cfg.Rules.FollowSymlinks,
		SkipHidden:        cfg.Rules.SkipHidden,
		Bootstrap:         cfg.Rules.Bootstrap,
		StrictParse:       cfg.Rules.StrictParse,
		ValidateRules:     cfg.Rules.ValidateRules,
	}, loaderOpts...)
	if err != nil {
		if recordStore != nil {
			recordStore.Close()
		}
		return nil, cli.NewCommandError("rules", fmt.Errorf("failed to create rule manager: %w", err))
	}

	return &catalog{
		manager: mgr,
		store:   recordStore,
		repo:    repo,
		paths:   paths,
	}, nil
}

// Close releases the catalog's sources.
func (c *catalog) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// gitsourceConfig maps the config file's git section onto the gitsource
// package's configuration.
func gitsourceConfig(gc *config.GitConfig) *gitsource.Config {
	return &gitsource.Config{
		Repository: gc.Repository,
		Branch:     gc.Branch,
		Path:       gc.Path,
		Auth: gitsource.AuthConfig{
			Type:             gc.Auth.Type,
			Token:            gc.Auth.Token,
			Username:         gc.Auth.Username,
			Password:         gc.Auth.Password,
			SSHKeyPath:       gc.Auth.SSHKeyPath,
			SSHKeyPassphrase: gc.Auth.SSHKeyPassphrase,
		},
		Poll: gitsource.PollConfig{
			Enabled:  gc.Poll.Enabled,
			Interval: gc.Poll.Interval,
			Timeout:  gc.Poll.Timeout,
		},
		Clone: gitsource.CloneConfig{
			Depth:        gc.Clone.Depth,
			LocalPath:    gc.Clone.LocalPath,
			CleanOnStart: gc.Clone.CleanOnStart,
		},
	}
}

// parseCategories maps category flag values onto catalog categories,
// rejecting unknown names instead of letting them coerce to CUSTOM.
func parseCategories(names []string) ([]ast.Category, error) {
	var cats []ast.Category
	for _, name := range names {
		cat := ast.ParseCategory(name)
		if cat == ast.CategoryCustom && !strings.EqualFold(strings.TrimSpace(name), string(ast.CategoryCustom)) {
			return nil, fmt.Errorf("unknown category %q (valid: %v)", name, ast.Categories())
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// parseSeverityFlag maps a severity flag value onto a catalog severity,
// rejecting unknown names instead of letting them coerce to MINOR.
func parseSeverityFlag(name string) (ast.Severity, error) {
	sev := ast.ParseSeverity(name)
	if sev == ast.SeverityMinor && !strings.EqualFold(strings.TrimSpace(name), string(ast.SeverityMinor)) {
		return "", fmt.Errorf("unknown severity %q (valid: %v)", name, ast.Severities())
	}
	return sev, nil
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	ctx := context.Background()
	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rules, err := cat.manager.LoadAllRules(ctx, false)
	if err != nil {
		return cli.NewCommandError("rules", fmt.Errorf("failed to load rule catalog: %w", err))
	}

	if rulesFlags.category != "" {
		cats, err := parseCategories([]string{rulesFlags.category})
		if err != nil {
			return err
		}
		rules = filterRules(rules, func(r *ast.Rule) bool { return r.Category == cats[0] })
	}
	if rulesFlags.severity != "" {
		sev, err := parseSeverityFlag(rulesFlags.severity)
		if err != nil {
			return err
		}
		rules = filterRules(rules, func(r *ast.Rule) bool { return r.Severity == sev })
	}
	if rulesFlags.enabledOnly {
		rules = filterRules(rules, func(r *ast.Rule) bool { return r.IsEnabled() })
	}

	if rulesFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"catalog_version": cat.manager.Version(),
			"total_rules":     len(rules),
			"rules":           rules,
		})
	}

	if len(rules) == 0 {
		fmt.Println("No rules match the given filters.")
		return nil
	}

	fmt.Printf("%-26s %-15s %-9s %-8s %s\n", "RULE ID", "CATEGORY", "SEVERITY", "ENABLED", "NAME")
	for i := range rules {
		rule := &rules[i]
		enabled := "yes"
		if !rule.IsEnabled() {
			enabled = "no"
		}
		fmt.Printf("%-26s %-15s %-9s %-8s %s\n", rule.ID, rule.Category, rule.Severity, enabled, rule.Name)
	}
	fmt.Printf("\n%d rule(s), catalog version %s\n", len(rules), cat.manager.Version())

	return nil
}

func filterRules(rules []ast.Rule, keep func(*ast.Rule) bool) []ast.Rule {
	filtered := rules[:0]
	for i := range rules {
		if keep(&rules[i]) {
			filtered = append(filtered, rules[i])
		}
	}
	return filtered
}

func showRuleStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	ctx := context.Background()
	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := cat.manager.LoadAllRules(ctx, false); err != nil {
		return cli.NewCommandError("rules", fmt.Errorf("failed to load rule catalog: %w", err))
	}

	stats := cat.manager.Stats()

	if rulesFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}

	fmt.Println("Rule Catalog Statistics")
	fmt.Println("=======================")
	fmt.Printf("Catalog version: %s\n", stats.Version)
	fmt.Printf("Loaded at:       %s\n", stats.LoadTime.Format(time.RFC3339))
	fmt.Printf("Total rules:     %d (%d enabled)\n", stats.TotalRules, stats.EnabledRules)
	fmt.Printf("Rulesets:        %d\n", stats.RuleSets)
	fmt.Printf("Origin:          %d file, %d store\n", stats.FileRules, stats.StoreRules)
	fmt.Println()

	fmt.Println("By category:")
	for _, cat := range ast.Categories() {
		fmt.Printf("  %-15s %d\n", cat.String()+":", stats.ByCategory[cat])
	}
	fmt.Println()

	fmt.Println("By severity:")
	for _, sev := range ast.Severities() {
		fmt.Printf("  %-10s %d\n", sev.String()+":", stats.BySeverity[sev])
	}

	return nil
}
