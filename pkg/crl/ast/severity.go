package ast

import "strings"

// Severity grades how serious a detected discrepancy is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL" // Documents must be rejected or amended
	SeverityMajor    Severity = "MAJOR"    // Likely refusal grounds, needs review
	SeverityMinor    Severity = "MINOR"    // Cosmetic or advisory finding
)

// Severities lists every valid severity value, most severe first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityMajor, SeverityMinor}
}

// ParseSeverity maps a free-text severity string to a Severity.
// Matching is case-insensitive. A malformed or unknown value coerces to
// SeverityMinor; rulebook parsing never rejects a rule over its severity.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityMajor:
		return SeverityMajor
	case SeverityMinor:
		return SeverityMinor
	}
	return SeverityMinor
}

// IsValid returns true if s is one of the closed severity values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return true
	}
	return false
}

// Weight returns a sortable rank for the severity. Higher is more severe;
// unknown values rank below MINOR.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	}
	return 0
}

// String returns the wire form of the severity.
func (s Severity) String() string {
	return string(s)
}
