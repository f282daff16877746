package ast

// ActionTypeIssue is the default action type: emit a discrepancy issue when
// the rule triggers. It is currently the only type with engine support;
// unknown types still produce an issue so a rulebook typo cannot silence a
// compliance finding.
const ActionTypeIssue = "issue"

// Action describes what a rule reports when it triggers. Template strings
// may reference context fields with {field.path} placeholders; an
// unresolvable placeholder renders as the literal "N/A".
type Action struct {
	Type             string   // Action type tag (default "issue")
	Title            string   // Short issue title
	Message          string   // Human-readable explanation of the discrepancy
	Suggestion       string   // Remediation hint for the document checker
	ExpectedTemplate string   // Template for the expected value shown in the issue (optional)
	ActualTemplate   string   // Template for the actual value shown in the issue (optional)
	Location         Location // Source location
}

// EffectiveType returns the action's type tag, defaulting to "issue".
func (a *Action) EffectiveType() string {
	if a.Type == "" {
		return ActionTypeIssue
	}
	return a.Type
}

// HasTemplates returns true if the action overrides the expected or actual
// value shown in a generated issue.
func (a *Action) HasTemplates() bool {
	return a.ExpectedTemplate != "" || a.ActualTemplate != ""
}
