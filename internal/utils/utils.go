package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if out, cut := TruncateRunes(s, limit); cut {
		return out + "..."
	}
	return s
}

// TruncateRunes keeps at most limit runes of s and reports whether anything
// was cut. A non-positive limit leaves s unchanged.
func TruncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}
