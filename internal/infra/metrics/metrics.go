package metrics

import "strings"

// norm keeps label values lowercase and bounded.
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	if len(s) > 40 {
		return s[:40]
	}
	return s
}
