// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds small string helpers for display labels.
package textutil

import "strings"

const ellipsis = "..."

// Truncate shortens s to at most maxLen runes, replacing the tail with "..."
// when it cuts. Whitespace runs are collapsed first so multi-line notes
// render on one menu line.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}
	return strings.TrimRight(string(runes[:maxLen-len(ellipsis)]), " ") + ellipsis
}
