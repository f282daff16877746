package engine

import (
	"strings"
	"unicode"
)

// templateFallback is rendered for placeholders whose path does not resolve
// to a value.
const templateFallback = "N/A"

// RenderTemplate replaces every {field.path} placeholder in tmpl with the
// string form of the path resolved against the context. A placeholder whose
// path is absent or empty renders as "N/A". Text between placeholders is
// copied verbatim, and a template whose braces do not pair up degrades to
// the raw template text. Rendering never fails.
//
// The renderer is a deliberate single-pass scan rather than a general
// templating engine: some rule definitions originate from a semi-trusted
// record store, and field substitution is the only feature issue messages
// need.
func RenderTemplate(tmpl string, ec *EvaluationContext) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}

		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			// Unbalanced braces: degrade to the raw template text.
			return tmpl
		}
		end += open

		b.WriteString(rest[:open])
		b.WriteString(renderPlaceholder(rest[open+1:end], ec))
		rest = rest[end+1:]
	}
}

// renderPlaceholder resolves one {path} token. Tokens that are not
// field-path shaped are kept literal, braces included, so stray braces in
// prose survive rendering.
func renderPlaceholder(token string, ec *EvaluationContext) string {
	path := strings.TrimSpace(token)
	if !isTemplatePath(path) {
		return "{" + token + "}"
	}

	value := ec.Resolve(path)
	if isEmpty(value) {
		return templateFallback
	}
	return stringify(value)
}

// isTemplatePath reports whether a token looks like a dotted field path.
func isTemplatePath(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
