package logging

import (
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/saturn/pkg/config"
)

// Redactor redacts sensitive data from log fields. Validation runs touch
// banking identifiers (accounts, credentials for the rule sources), and
// logs routinely leave the host for aggregation, so masking happens at
// the logging boundary.
type Redactor struct {
	patterns map[string]*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Common redaction pattern names.
const (
	PatternAccessToken   = "access_token"
	PatternBearerToken   = "bearer_token"
	PatternEmail         = "email"
	PatternIBAN          = "iban"
	PatternAccountNumber = "account_number"
	PatternPhone         = "phone"
	PatternPassword      = "password"
)

// NewRedactor creates a new Redactor with default and custom patterns.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{
		patterns: make(map[string]*redactPattern),
	}

	// Add default patterns
	r.addDefaultPatterns()

	// Add custom patterns
	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			// Invalid patterns are rejected by config validation; skip
			// any that slip through rather than fail the logger
			continue
		}
		r.patterns[p.Name] = &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		}
	}

	return r
}

// addDefaultPatterns adds built-in redaction patterns.
func (r *Redactor) addDefaultPatterns() {
	patterns := map[string]struct {
		regex       string
		replacement string
	}{
		// Forge access tokens (GitHub, GitLab) used for rulebook repositories
		PatternAccessToken: {
			regex:       `\b(?:(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{16,}|github_pat_[A-Za-z0-9_]{22,}|glpat-[A-Za-z0-9_\-]{20,})\b`,
			replacement: "***",
		},

		// Bearer tokens
		PatternBearerToken: {
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},

		// Email addresses (keep first character and domain)
		PatternEmail: {
			regex:       `\b([a-zA-Z0-9._%+-])[a-zA-Z0-9._%+-]*@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})\b`,
			replacement: "$1***@$2",
		},

		// IBANs (keep the country code and check digits)
		PatternIBAN: {
			regex:       `\b([A-Z]{2}\d{2})[A-Z0-9]{11,30}\b`,
			replacement: "$1****",
		},

		// Labelled account numbers
		PatternAccountNumber: {
			regex:       `(?i)\b(account|acct)[-_ #:]*(?:no|num|number)?[#:. ]*\d{6,}\b`,
			replacement: "$1 ***",
		},

		// Phone numbers
		PatternPhone: {
			regex:       `\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`,
			replacement: "***-***-****",
		},

		// Generic password fields
		PatternPassword: {
			regex:       `(password|passwd|pwd)[:=]\s*[^\s]+`,
			replacement: "$1: ***",
		},
	}

	for name, p := range patterns {
		regex := regexp.MustCompile(p.regex)
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regex,
			replacement: p.replacement,
		}
	}
}

// RedactString redacts sensitive data from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	// Convert to lowercase for case-insensitive matching
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"secret", "token", "credential",
		"api_key", "apikey",
		"auth", "authorization",
		"passphrase",
		"ssh_key", "sshkey",
		"private_key", "privatekey",
		"account_number", "accountnumber",
		"iban", "swift", "bic",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// redactValue redacts a sensitive value completely.
func (r *Redactor) redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		// Keep a hint of the value for identification
		if len(v) <= 4 {
			return "***"
		}
		return v[:4] + "***"
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}

// RedactEmail redacts an email address partially (shows first char and domain).
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	domain := parts[1]

	if len(username) == 0 {
		return "***@" + domain
	}

	return string(username[0]) + "***@" + domain
}

// RedactToken redacts an access token, keeping only a prefix.
func RedactToken(token string) string {
	if len(token) <= 4 {
		return "***"
	}

	// Keep first 4 characters for identification
	return token[:4] + "***"
}

// RedactIBAN redacts an IBAN, keeping the country code, check digits and
// the last four characters.
func RedactIBAN(iban string) string {
	cleaned := strings.ReplaceAll(iban, " ", "")
	if len(cleaned) < 15 {
		return "****"
	}

	return cleaned[:4] + strings.Repeat("*", len(cleaned)-8) + cleaned[len(cleaned)-4:]
}
