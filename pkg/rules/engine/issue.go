package engine

import (
	"strings"

	"mercator-hq/saturn/pkg/crl/ast"
)

// documentsKey is the context entry listing the classified source documents.
const documentsKey = "documents"

// buildIssue assembles the discrepancy issue for a triggered rule. The
// reported expected/actual values default to the first failed condition's
// operands; the action's templates override them when present.
func (e *Engine) buildIssue(rule *ast.Rule, ec *EvaluationContext, failed *ConditionResult) *Issue {
	action := rule.Action

	issue := &Issue{
		RuleID:        rule.ID,
		Title:         action.Title,
		Severity:      rule.Severity,
		Message:       RenderTemplate(action.Message, ec),
		Suggestion:    action.Suggestion,
		Documents:     matchDocuments(ec, rule),
		UCPReference:  rule.UCPReference,
		ISBPReference: rule.ISBPReference,
	}
	if issue.Title == "" {
		issue.Title = rule.Name
	}

	if failed != nil {
		issue.Expected = stringify(failed.Expected)
		issue.Actual = stringify(failed.Actual)
	}
	if action.ExpectedTemplate != "" {
		issue.Expected = RenderTemplate(action.ExpectedTemplate, ec)
	}
	if action.ActualTemplate != "" {
		issue.Actual = RenderTemplate(action.ActualTemplate, ec)
	}

	return issue
}

// matchDocuments returns the names of context documents whose type tag
// matches one of the rule's declared source or target document types.
// Entries in the context's documents collection carry their type under
// "document_type" or "type" and their name under "name", "filename", or
// "id"; entries missing either are ignored.
func matchDocuments(ec *EvaluationContext, rule *ast.Rule) []string {
	types := rule.DocumentTypes()
	if len(types) == 0 {
		return nil
	}

	docs, ok := sequenceItems(ec.Resolve(documentsKey))
	if !ok {
		return nil
	}

	var names []string
	for _, doc := range docs {
		docType := documentAttr(doc, "document_type", "type")
		if docType == "" || !matchesDocumentType(types, docType) {
			continue
		}
		name := documentAttr(doc, "name", "filename", "id")
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// documentAttr reads the first present, non-empty attribute from a
// document entry.
func documentAttr(doc any, keys ...string) string {
	for _, key := range keys {
		if v, ok := lookupSegment(doc, key); ok && !isEmpty(v) {
			return stringify(v)
		}
	}
	return ""
}

func matchesDocumentType(types []string, docType string) bool {
	for _, t := range types {
		if strings.EqualFold(t, docType) {
			return true
		}
	}
	return false
}
