package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/crl/parser"
	"mercator-hq/saturn/pkg/crl/validator"
	"mercator-hq/saturn/pkg/rules/store"
)

// MetricsRecorder receives loader events for metrics collection.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	// RecordReload records one load pass and its outcome ("success" or
	// "failure").
	RecordReload(outcome string, duration time.Duration)

	// RecordRulesLoaded records how many rules an origin ("file" or
	// "store") contributed to the catalog.
	RecordRulesLoaded(origin string, count int)

	// RecordSourceError counts one skipped declarative source.
	RecordSourceError()

	// RecordTranslationSkip counts one skipped persisted record.
	RecordTranslationSkip()
}

// noopMetrics discards all recordings.
type noopMetrics struct{}

func (noopMetrics) RecordReload(string, time.Duration) {}
func (noopMetrics) RecordRulesLoaded(string, int)      {}
func (noopMetrics) RecordSourceError()                 {}
func (noopMetrics) RecordTranslationSkip()             {}

// Manager assembles and serves the rule catalog.
// It loads declarative rulebooks and persisted store records, merges them
// into one catalog keyed by rule id, and caches the result. All catalog
// queries are safe for concurrent use; loads are serialized.
type Manager struct {
	config     *Config
	loader     *FileLoader
	registry   *Registry
	parser     *parser.Parser
	validator  *validator.Validator
	translator *Translator
	store      store.RecordStore
	logger     *slog.Logger
	metrics    MetricsRecorder
	now        func() time.Time

	// Load state, guarded by mu. The mutex serializes the whole load
	// pipeline so two concurrent reloads cannot interleave their file
	// reads and registry writes.
	mu            sync.Mutex
	loaded        bool
	lastLoadTime  time.Time
	lastLoadError error
	fileRules     int
	storeRules    int
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore attaches the persisted rule record store. Without a store the
// catalog is file-only.
func WithStore(s store.RecordStore) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a rule catalog manager.
func NewManager(config *Config, opts ...Option) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := parser.NewParser().
		WithMaxFileSize(config.MaxFileSize).
		WithStrictMode(config.StrictParse)

	m := &Manager{
		config:    config,
		parser:    p,
		validator: validator.NewValidator(),
		registry:  NewRegistry(),
		logger:    slog.Default(),
		metrics:   noopMetrics{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.loader = NewFileLoader(config, p, m.logger)
	m.translator = NewTranslator(m.logger)

	return m, nil
}

// LoadAllRules returns the full catalog, loading it on first call.
// With force true the catalog is rebuilt from all sources even when
// already cached.
func (m *Manager) LoadAllRules(ctx context.Context, force bool) ([]ast.Rule, error) {
	if err := m.ensureLoaded(ctx, force); err != nil {
		return nil, err
	}
	return m.registry.Rules(), nil
}

// Rule returns the catalog rule with the given id.
func (m *Manager) Rule(ctx context.Context, id string) (ast.Rule, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return ast.Rule{}, err
	}
	rule, ok := m.registry.Rule(id)
	if !ok {
		return ast.Rule{}, fmt.Errorf("%w: %q", ErrRuleNotFound, id)
	}
	return rule, nil
}

// RulesByCategory returns the catalog rules in the given category.
func (m *Manager) RulesByCategory(ctx context.Context, category ast.Category) ([]ast.Rule, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return nil, err
	}

	var rules []ast.Rule
	for _, rule := range m.registry.Rules() {
		if rule.Category == category {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// RulesBySeverity returns the catalog rules with the given severity.
func (m *Manager) RulesBySeverity(ctx context.Context, severity ast.Severity) ([]ast.Rule, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return nil, err
	}

	var rules []ast.Rule
	for _, rule := range m.registry.Rules() {
		if rule.Severity == severity {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// EnabledRules returns the enabled catalog rules, optionally filtered by
// category. It satisfies the engine's Catalog interface.
func (m *Manager) EnabledRules(ctx context.Context, categories ...ast.Category) ([]ast.Rule, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return nil, err
	}

	var rules []ast.Rule
	for _, rule := range m.registry.Rules() {
		if !rule.IsEnabled() {
			continue
		}
		if len(categories) > 0 && !containsCategory(categories, rule.Category) {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// RuleSet returns the ruleset with the given id, including member rules.
func (m *Manager) RuleSet(ctx context.Context, id string) (*ast.RuleSet, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return nil, err
	}
	rs, ok := m.registry.RuleSet(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRuleSetNotFound, id)
	}
	return rs, nil
}

// RuleSets returns all rulesets discovered from grouped rulebook sources.
func (m *Manager) RuleSets(ctx context.Context) ([]*ast.RuleSet, error) {
	if err := m.ensureLoaded(ctx, false); err != nil {
		return nil, err
	}
	return m.registry.RuleSets(), nil
}

// Reload rebuilds the catalog from all sources. On failure the previous
// catalog stays served and the error is returned.
func (m *Manager) Reload(ctx context.Context) error {
	return m.ensureLoaded(ctx, true)
}

// Stats returns catalog counts plus origin counts from the last load.
func (m *Manager) Stats() Stats {
	stats := m.registry.Stats()

	m.mu.Lock()
	stats.FileRules = m.fileRules
	stats.StoreRules = m.storeRules
	m.mu.Unlock()

	return stats
}

// Version returns the current catalog version.
func (m *Manager) Version() string {
	return m.registry.Version()
}

// LastLoadTime returns the timestamp of the last successful load.
func (m *Manager) LastLoadTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadTime
}

// LastLoadError returns the error recorded by the last load attempt.
func (m *Manager) LastLoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadError
}

// ensureLoaded loads the catalog when it has not been loaded yet, or
// unconditionally when force is set.
func (m *Manager) ensureLoaded(ctx context.Context, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded && !force {
		return nil
	}
	return m.loadLocked(ctx)
}

// loadLocked runs the full load pipeline. Callers hold m.mu.
func (m *Manager) loadLocked(ctx context.Context) error {
	startTime := m.now()
	m.logger.Info("Loading rule catalog",
		"paths", m.config.Paths,
		"store", m.store != nil,
	)

	errList := &ErrorList{}

	fileRules, rulesets := m.loadFileSources(errList)
	storeRules := m.loadStoreRecords(ctx, errList)

	merged := m.mergeOrigins(fileRules, storeRules)

	// A catalog that came out empty with errors on the books is a failed
	// load; keep serving whatever was loaded before.
	if len(merged) == 0 && errList.HasErrors() {
		err := errList.ToError()
		m.lastLoadError = err
		m.metrics.RecordReload("failure", m.now().Sub(startTime))
		m.logger.Error("Failed to load rule catalog, keeping previous catalog",
			"error", err,
			"duration_ms", m.now().Sub(startTime).Milliseconds(),
		)
		return err
	}

	if err := m.registry.Replace(merged, rulesets); err != nil {
		m.lastLoadError = err
		m.metrics.RecordReload("failure", m.now().Sub(startTime))
		m.logger.Error("Failed to replace rule catalog",
			"error", err,
			"duration_ms", m.now().Sub(startTime).Milliseconds(),
		)
		return err
	}

	m.loaded = true
	m.lastLoadTime = m.now()
	m.lastLoadError = nil
	m.fileRules = len(fileRules)
	m.storeRules = len(storeRules)

	m.metrics.RecordReload("success", m.now().Sub(startTime))
	m.metrics.RecordRulesLoaded("file", len(fileRules))
	m.metrics.RecordRulesLoaded("store", len(storeRules))

	m.logger.Info("Rule catalog loaded",
		"total", len(merged),
		"file_rules", len(fileRules),
		"store_rules", len(storeRules),
		"rulesets", len(rulesets),
		"skipped_sources", len(errList.Errors),
		"version", m.registry.Version(),
		"duration_ms", m.now().Sub(startTime).Milliseconds(),
	)

	return nil
}

// loadFileSources reads every configured path, bootstrapping the first
// directory when enabled. Source failures are logged, counted, and
// collected; loading continues with the remaining sources.
func (m *Manager) loadFileSources(errList *ErrorList) ([]ast.Rule, []*ast.RuleSet) {
	if len(m.config.Paths) == 0 {
		return nil, nil
	}

	if m.config.Bootstrap {
		if _, err := Bootstrap(m.config.Paths[0], m.config, m.logger); err != nil {
			m.logger.Warn("Bootstrap failed", "error", err)
		}
	}

	var rules []ast.Rule
	var rulesets []*ast.RuleSet

	for _, path := range m.config.Paths {
		loaded, err := m.loadPath(path)
		if err != nil {
			m.recordSourceError(errList, err)
		}
		for _, rs := range loaded {
			if m.config.ValidateRules {
				if err := m.validator.Validate(rs); err != nil {
					m.recordSourceError(errList, &SourceError{
						Path:    rs.SourceFile,
						Message: "validation failed",
						Cause:   err,
					})
					continue
				}
			}

			rules = append(rules, rs.Rules...)

			// Only grouped sources declare a ruleset id; a flat rule
			// list is an anonymous wrapper and is not registered.
			if rs.ID != "" {
				rulesets = append(rulesets, rs)
			}
		}
	}

	return rules, rulesets
}

// loadPath loads one configured path, which may be a file or a directory.
// A partial directory result returns both rulebooks and an error.
func (m *Manager) loadPath(path string) ([]*ast.RuleSet, error) {
	isDir, err := m.loader.IsDirectory(path)
	if err != nil {
		return nil, &SourceError{
			Path:    path,
			Message: "failed to access rule source",
			Cause:   err,
		}
	}

	if isDir {
		return m.loader.LoadDirectory(path)
	}

	rs, err := m.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*ast.RuleSet{rs}, nil
}

// loadStoreRecords reads and translates active store records. A store
// read failure degrades to a file-only catalog rather than failing the
// load.
func (m *Manager) loadStoreRecords(ctx context.Context, errList *ErrorList) []ast.Rule {
	if m.store == nil {
		return nil
	}

	records, err := m.store.ListActive(ctx)
	if err != nil {
		m.recordSourceError(errList, &SourceError{
			Path:    storeOrigin,
			Message: "failed to list rule records",
			Cause:   err,
		})
		return nil
	}

	rules, errs := m.translator.TranslateAll(records)
	for _, err := range errs {
		errList.Add(err)
		m.metrics.RecordTranslationSkip()
	}

	return rules
}

// mergeOrigins merges file rules and store rules into one catalog keyed by
// rule id. Within the file origin the last definition wins; across
// origins a store record overrides the file rule with the same id.
func (m *Manager) mergeOrigins(fileRules, storeRules []ast.Rule) []ast.Rule {
	index := make(map[string]int, len(fileRules)+len(storeRules))
	merged := make([]ast.Rule, 0, len(fileRules)+len(storeRules))

	for i := range fileRules {
		rule := fileRules[i]
		if at, seen := index[rule.ID]; seen {
			m.logger.Warn("Duplicate rule id across rulebooks, last definition wins",
				"rule_id", rule.ID,
				"kept", rule.Location.File,
				"replaced", merged[at].Location.File,
			)
			merged[at] = rule
			continue
		}
		index[rule.ID] = len(merged)
		merged = append(merged, rule)
	}

	for i := range storeRules {
		rule := storeRules[i]
		if at, seen := index[rule.ID]; seen {
			m.logger.Info("Store record overrides file-defined rule",
				"rule_id", rule.ID,
				"replaced", merged[at].Location.File,
			)
			merged[at] = rule
			continue
		}
		index[rule.ID] = len(merged)
		merged = append(merged, rule)
	}

	return merged
}

func (m *Manager) recordSourceError(errList *ErrorList, err error) {
	// A directory's partial failure arrives as an ErrorList; flatten it
	// so counts stay per-file.
	if list, ok := err.(*ErrorList); ok {
		for _, e := range list.Errors {
			m.recordSourceError(errList, e)
		}
		return
	}

	m.logger.Warn("Skipping rule source", "error", err)
	errList.Add(err)
	m.metrics.RecordSourceError()
}

func containsCategory(categories []ast.Category, c ast.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}
