package http

import (
	"strings"
)

const maxChatMessageLength = 2000

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// wantsYAML reports whether an export was requested as YAML.
func wantsYAML(format, accept string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		return true
	case "json":
		return false
	}
	return strings.Contains(accept, "yaml")
}
