package util

import "strings"

func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ClampRunes cuts s to at most max runes.
func ClampRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Ellipsize is ClampRunes with a trailing "…" when s was cut.
func Ellipsize(s string, max int) string {
	if out := ClampRunes(s, max); out != s {
		return out + "…"
	}
	return s
}
