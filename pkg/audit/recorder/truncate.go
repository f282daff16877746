package recorder

// TruncateString truncates s to at most maxLen characters, replacing the
// tail with "..." when anything was cut. Strings at or under the limit are
// returned unchanged.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
