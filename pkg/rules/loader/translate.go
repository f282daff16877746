package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/store"
)

// storeOrigin is the pseudo source path recorded on translated rules.
const storeOrigin = "store"

// severityAliases maps free-text persisted severities onto the closed
// severity vocabulary. Anything outside the table becomes MAJOR: an
// unclassifiable finding still needs review, it just isn't automatic
// refusal grounds.
var severityAliases = map[string]ast.Severity{
	"fail":     ast.SeverityCritical,
	"error":    ast.SeverityCritical,
	"high":     ast.SeverityCritical,
	"critical": ast.SeverityCritical,
	"warn":     ast.SeverityMajor,
	"warning":  ast.SeverityMajor,
	"medium":   ast.SeverityMajor,
	"major":    ast.SeverityMajor,
	"low":      ast.SeverityMinor,
	"info":     ast.SeverityMinor,
	"minor":    ast.SeverityMinor,
}

// domainCategories maps free-text persisted domain strings onto the closed
// category vocabulary. Anything outside the table becomes UCP600, the
// default regime for documentary credit checks.
var domainCategories = map[string]ast.Category{
	"ucp600":           ast.CategoryUCP600,
	"ucp_600":          ast.CategoryUCP600,
	"ucp":              ast.CategoryUCP600,
	"isbp":             ast.CategoryISBP,
	"isbp745":          ast.CategoryISBP,
	"isbp_745":         ast.CategoryISBP,
	"cross_document":   ast.CategoryCrossDocument,
	"cross_doc":        ast.CategoryCrossDocument,
	"consistency":      ast.CategoryCrossDocument,
	"extraction":       ast.CategoryExtraction,
	"mandatory_fields": ast.CategoryExtraction,
	"sanctions":        ast.CategorySanctions,
	"screening":        ast.CategorySanctions,
	"aml":              ast.CategorySanctions,
	"custom":           ast.CategoryCustom,
	"institution":      ast.CategoryCustom,
}

// aliasSeverity resolves a free-text severity through the alias table.
func aliasSeverity(s string) ast.Severity {
	if sev, ok := severityAliases[normalizeAlias(s)]; ok {
		return sev
	}
	return ast.SeverityMajor
}

// aliasCategory resolves a free-text domain through the category table.
func aliasCategory(s string) ast.Category {
	if cat, ok := domainCategories[normalizeAlias(s)]; ok {
		return cat
	}
	return ast.CategoryUCP600
}

// normalizeAlias lowercases and collapses separators so "Cross-Document"
// and "cross document" hit the same table entry.
func normalizeAlias(s string) string {
	norm := strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
}

// Translator converts persisted rule records into the strict rule schema.
// It is the only place the loose external shape touches the catalog:
// nothing unvalidated leaks past it into evaluation.
type Translator struct {
	logger *slog.Logger
}

// NewTranslator creates a translator.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// TranslateAll converts a record list, skipping records that fail to
// translate. Each skip is logged; the returned error list mirrors the log
// so callers can count and report. A bad record never aborts the batch.
func (t *Translator) TranslateAll(records []store.Record) ([]ast.Rule, []error) {
	var rules []ast.Rule
	var errs []error

	for i := range records {
		rule, err := t.Translate(&records[i])
		if err != nil {
			t.logger.Warn("Skipping untranslatable rule record",
				"rule_id", records[i].RuleID,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}

	return rules, errs
}

// Translate converts one persisted record into a rule. It returns a
// TranslationError when the record cannot be mapped; panics inside the
// mapping are caught and reported the same way.
func (t *Translator) Translate(rec *store.Record) (rule ast.Rule, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TranslationError{
				RuleID:  rec.RuleID,
				Message: fmt.Sprintf("translation panicked: %v", r),
			}
		}
	}()

	if rec.RuleID == "" {
		return ast.Rule{}, &TranslationError{
			Message: "record has no rule_id",
		}
	}

	rule = ast.Rule{
		ID:           rec.RuleID,
		Name:         rec.Title,
		Category:     aliasCategory(rec.DomainOrType()),
		Severity:     aliasSeverity(rec.Severity),
		Description:  rec.Description,
		Enabled:      rec.IsActive,
		Version:      rec.Version,
		UCPReference: rec.Reference,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Location:     ast.Location{File: storeOrigin},
	}
	if rule.Name == "" {
		rule.Name = rule.ID
	}

	rule.Conditions = make([]ast.Condition, 0, len(rec.Conditions))
	for i := range rec.Conditions {
		cond, err := t.translateCondition(rec, &rec.Conditions[i], i)
		if err != nil {
			return ast.Rule{}, err
		}
		rule.Conditions = append(rule.Conditions, *cond)
	}

	// A record's title and description double as the issue content; a
	// triggered rule with neither stays issue-less.
	if rec.Title != "" || rec.Description != "" {
		rule.Action = &ast.Action{
			Type:     ast.ActionTypeIssue,
			Title:    rec.Title,
			Message:  rec.Description,
			Location: rule.Location,
		}
	}

	return rule, nil
}

// translateCondition maps one JSON-shaped condition. The field path is the
// only hard requirement; an unknown operator degrades to exists rather
// than rejecting the record.
func (t *Translator) translateCondition(rec *store.Record, rc *store.RecordCondition, index int) (*ast.Condition, error) {
	field := rc.FieldPath()
	if field == "" {
		return nil, &TranslationError{
			RuleID:  rec.RuleID,
			Message: fmt.Sprintf("condition %d has no field path", index),
		}
	}

	op, known := ast.ParseOperator(rc.OperatorName())
	if !known {
		t.logger.Warn("Unknown operator in rule record, defaulting to exists",
			"rule_id", rec.RuleID,
			"operator", rc.OperatorName(),
		)
		op = ast.OpExists
	}

	return &ast.Condition{
		Field:         field,
		Operator:      op,
		Value:         coerceValue(rc.ComparisonValue()),
		CompareField:  rc.CompareField,
		Threshold:     rc.Threshold,
		CaseSensitive: rc.CaseSensitive,
		Location:      ast.Location{File: storeOrigin},
	}, nil
}

// coerceValue widens integer values to float64 so record-sourced
// comparison values land in the same shapes YAML-sourced values do.
func coerceValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerceValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = coerceValue(item)
		}
		return out
	default:
		return v
	}
}
