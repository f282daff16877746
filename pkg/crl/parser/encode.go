package parser

import (
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/crl/ast"
)

// encodeRule mirrors yamlRule for marshalling. Flags that default to true
// are pointers so the encoder can omit them when they hold the default,
// keeping emitted rulebooks minimal while round-tripping exactly.
type encodeRule struct {
	ID                       string            `yaml:"id"`
	Name                     string            `yaml:"name,omitempty"`
	Category                 string            `yaml:"category"`
	Severity                 string            `yaml:"severity"`
	Description              string            `yaml:"description,omitempty"`
	Conditions               []encodeCondition `yaml:"conditions,omitempty"`
	Action                   *encodeAction     `yaml:"action,omitempty"`
	Enabled                  *bool             `yaml:"enabled,omitempty"`
	Version                  string            `yaml:"version,omitempty"`
	UCPReference             string            `yaml:"ucp_reference,omitempty"`
	ISBPReference            string            `yaml:"isbp_reference,omitempty"`
	SourceDocuments          []string          `yaml:"source_documents,omitempty"`
	TargetDocuments          []string          `yaml:"target_documents,omitempty"`
	RequiresFields           []string          `yaml:"requires_fields,omitempty"`
	OptionalFields           []string          `yaml:"optional_fields,omitempty"`
	CanOverride              bool              `yaml:"can_override,omitempty"`
	OverrideRequiresApproval bool              `yaml:"override_requires_approval,omitempty"`
	CreatedAt                string            `yaml:"created_at,omitempty"`
	UpdatedAt                string            `yaml:"updated_at,omitempty"`
	CreatedBy                string            `yaml:"created_by,omitempty"`
}

type encodeCondition struct {
	Field         string   `yaml:"field"`
	Operator      string   `yaml:"operator"`
	Value         any      `yaml:"value,omitempty"`
	CompareField  string   `yaml:"compare_field,omitempty"`
	Threshold     *float64 `yaml:"threshold,omitempty"`
	CaseSensitive bool     `yaml:"case_sensitive,omitempty"`
	Normalize     *bool    `yaml:"normalize,omitempty"`
}

type encodeAction struct {
	Type             string `yaml:"type,omitempty"`
	Title            string `yaml:"title,omitempty"`
	Message          string `yaml:"message,omitempty"`
	Suggestion       string `yaml:"suggestion,omitempty"`
	ExpectedTemplate string `yaml:"expected_template,omitempty"`
	ActualTemplate   string `yaml:"actual_template,omitempty"`
}

type encodeRuleSet struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name,omitempty"`
	Version     string       `yaml:"version,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Category    string       `yaml:"category,omitempty"`
	UCPVersion  string       `yaml:"ucp_version,omitempty"`
	Enabled     *bool        `yaml:"enabled,omitempty"`
	Rules       []encodeRule `yaml:"rules"`
}

// MarshalRules serializes rules as a flat rulebook list using the
// documented wire field names. The output re-parses to identical rules.
func MarshalRules(rules []ast.Rule) ([]byte, error) {
	out := make([]encodeRule, len(rules))
	for i := range rules {
		out[i] = toEncodeRule(&rules[i])
	}
	return yaml.Marshal(out)
}

// MarshalRuleSet serializes a ruleset wrapper using the documented wire
// field names.
func MarshalRuleSet(rs *ast.RuleSet) ([]byte, error) {
	out := encodeRuleSet{
		ID:          rs.ID,
		Name:        rs.Name,
		Version:     rs.Version,
		Description: rs.Description,
		UCPVersion:  rs.UCPVersion,
		Enabled:     omitTrue(rs.Enabled),
		Rules:       make([]encodeRule, len(rs.Rules)),
	}
	if rs.Category != "" {
		out.Category = rs.Category.String()
	}
	for i := range rs.Rules {
		out.Rules[i] = toEncodeRule(&rs.Rules[i])
	}
	return yaml.Marshal(out)
}

func toEncodeRule(r *ast.Rule) encodeRule {
	out := encodeRule{
		ID:                       r.ID,
		Name:                     r.Name,
		Category:                 r.Category.String(),
		Severity:                 r.Severity.String(),
		Description:              r.Description,
		Enabled:                  omitTrue(r.Enabled),
		Version:                  r.Version,
		UCPReference:             r.UCPReference,
		ISBPReference:            r.ISBPReference,
		SourceDocuments:          r.SourceDocuments,
		TargetDocuments:          r.TargetDocuments,
		RequiresFields:           r.RequiresFields,
		OptionalFields:           r.OptionalFields,
		CanOverride:              r.CanOverride,
		OverrideRequiresApproval: r.OverrideRequiresApproval,
		CreatedBy:                r.CreatedBy,
	}

	// Name defaults to ID on parse; omit the duplicate
	if out.Name == r.ID {
		out.Name = ""
	}

	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		out.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}

	if len(r.Conditions) > 0 {
		out.Conditions = make([]encodeCondition, len(r.Conditions))
		for i := range r.Conditions {
			c := &r.Conditions[i]
			out.Conditions[i] = encodeCondition{
				Field:         c.Field,
				Operator:      c.Operator.String(),
				Value:         c.Value,
				CompareField:  c.CompareField,
				Threshold:     c.Threshold,
				CaseSensitive: c.CaseSensitive,
				Normalize:     omitTrueDefault(c.Normalize),
			}
		}
	}

	if r.Action != nil {
		a := *r.Action
		out.Action = &encodeAction{
			Type:             a.Type,
			Title:            a.Title,
			Message:          a.Message,
			Suggestion:       a.Suggestion,
			ExpectedTemplate: a.ExpectedTemplate,
			ActualTemplate:   a.ActualTemplate,
		}
		if out.Action.Type == ast.ActionTypeIssue {
			out.Action.Type = ""
		}
	}

	return out
}

// omitTrue returns nil for true so a default-true flag is omitted from the
// output, and a pointer to false otherwise.
func omitTrue(v bool) *bool {
	if v {
		return nil
	}
	f := false
	return &f
}

// omitTrueDefault collapses an explicit true back to unset; both parse to
// the same effective value.
func omitTrueDefault(v *bool) *bool {
	if v == nil || *v {
		return nil
	}
	return v
}
