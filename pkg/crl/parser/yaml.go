package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRulebook represents the intermediate structure for parsing a rulebook
// file. A file is either a flat rule list or a ruleset wrapper; a flat list
// decodes into Rules with the wrapper metadata left empty.
type yamlRulebook struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Version     string     `yaml:"version"`
	Description string     `yaml:"description"`
	Category    string     `yaml:"category"`
	UCPVersion  string     `yaml:"ucp_version"`
	Enabled     *bool      `yaml:"enabled"` // Pointer to distinguish unset vs false
	Rules       []yamlRule `yaml:"rules"`

	// Internal tracking
	node      *yaml.Node   // Original YAML document for line numbers
	ruleNodes []*yaml.Node // Per-rule YAML nodes, aligned with Rules
}

// yamlRule represents an intermediate rule structure.
type yamlRule struct {
	ID                       string          `yaml:"id"`
	Name                     string          `yaml:"name"`
	Category                 string          `yaml:"category"`
	Severity                 string          `yaml:"severity"`
	Description              string          `yaml:"description"`
	Conditions               []yamlCondition `yaml:"conditions"`
	Action                   *yamlAction     `yaml:"action"`
	Enabled                  *bool           `yaml:"enabled"` // Pointer to distinguish unset vs false
	Version                  string          `yaml:"version"`
	UCPReference             string          `yaml:"ucp_reference"`
	ISBPReference            string          `yaml:"isbp_reference"`
	SourceDocuments          []string        `yaml:"source_documents"`
	TargetDocuments          []string        `yaml:"target_documents"`
	RequiresFields           []string        `yaml:"requires_fields"`
	OptionalFields           []string        `yaml:"optional_fields"`
	CanOverride              bool            `yaml:"can_override"`
	OverrideRequiresApproval bool            `yaml:"override_requires_approval"`
	CreatedAt                string          `yaml:"created_at"`
	UpdatedAt                string          `yaml:"updated_at"`
	CreatedBy                string          `yaml:"created_by"`
}

// yamlCondition represents an intermediate condition structure.
type yamlCondition struct {
	Field         string   `yaml:"field"`
	Operator      string   `yaml:"operator"`
	Value         any      `yaml:"value"`
	CompareField  string   `yaml:"compare_field"`
	Threshold     *float64 `yaml:"threshold"`
	CaseSensitive bool     `yaml:"case_sensitive"`
	Normalize     *bool    `yaml:"normalize"` // Pointer to distinguish unset vs false
}

// yamlAction represents an intermediate action structure.
type yamlAction struct {
	Type             string `yaml:"type"`
	Title            string `yaml:"title"`
	Message          string `yaml:"message"`
	Suggestion       string `yaml:"suggestion"`
	ExpectedTemplate string `yaml:"expected_template"`
	ActualTemplate   string `yaml:"actual_template"`
}

// parseYAMLFile reads and parses a rulebook file into the intermediate
// structure, preserving line numbers for error reporting.
func parseYAMLFile(path string, strict bool) (*yamlRulebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data, path, strict)
}

// parseYAMLBytes parses rulebook YAML into the intermediate structure.
// The top-level shape decides the form: a sequence is a flat rule list, a
// mapping is a ruleset wrapper.
func parseYAMLBytes(data []byte, sourcePath string, strict bool) (*yamlRulebook, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	root := documentRoot(&node)
	if root == nil || root.Kind == 0 || root.Tag == "!!null" {
		// Empty file parses to an empty rulebook
		return &yamlRulebook{node: &node}, nil
	}

	var book yamlRulebook
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&book.Rules); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := root.Decode(&book); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("rulebook must be a rule list or a ruleset mapping, got %v", root.Kind)
	}

	if strict {
		if err := strictDecode(data, root.Kind); err != nil {
			return nil, err
		}
	}

	book.node = &node
	book.ruleNodes = collectRuleNodes(root)
	return &book, nil
}

// strictDecode re-decodes the document rejecting unknown fields. The node
// decode above cannot enforce this, so strict mode runs a second pass.
func strictDecode(data []byte, kind yaml.Kind) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if kind == yaml.SequenceNode {
		var rules []yamlRule
		return ignoreEOF(dec.Decode(&rules))
	}
	var book yamlRulebook
	return ignoreEOF(dec.Decode(&book))
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// documentRoot unwraps the document node to the top-level content node.
func documentRoot(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		return node.Content[0]
	}
	return node
}

// collectRuleNodes returns the YAML node of each rule entry so the builder
// can attach real line numbers to rules.
func collectRuleNodes(root *yaml.Node) []*yaml.Node {
	switch root.Kind {
	case yaml.SequenceNode:
		return root.Content
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "rules" && root.Content[i+1].Kind == yaml.SequenceNode {
				return root.Content[i+1].Content
			}
		}
	}
	return nil
}

// ruleLocation returns the source line/column of the rule at index, or zeros
// when node tracking is unavailable.
func (yb *yamlRulebook) ruleLocation(index int) (int, int) {
	if index < 0 || index >= len(yb.ruleNodes) || yb.ruleNodes[index] == nil {
		return 0, 0
	}
	return yb.ruleNodes[index].Line, yb.ruleNodes[index].Column
}
