package cache

import (
	"strings"
)

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// joinKey builds a colon separated key, escaping every part.
func joinKey(namespace string, parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(safe(p))
	}
	return b.String()
}
