// Package strings provides small string helpers shared across packages
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalizes and asserts a root path like /runs or /schedule
// ensures a single leading slash and no trailing slash except for the root itself
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Snippet returns at most n bytes of s for error messages, cut on a rune boundary
func Snippet(s string, n int) string {
	s = std.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !runeStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func runeStart(b byte) bool { return b&0xC0 != 0x80 }

// Flatten replaces tabs and line breaks with single spaces so s fits in one delimited cell
func Flatten(s string) string {
	if !std.ContainsAny(s, "\t\r\n") {
		return s
	}
	s = std.ReplaceAll(s, "\r\n", " ")
	return std.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}

// FirstNonEmpty returns the first argument with non whitespace content
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if std.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
