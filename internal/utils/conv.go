package utils

import (
	"strconv"
	"unicode/utf8"
)

// ParseID parses a positive numeric path parameter. ok is false for
// anything else.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// TruncateChars shortens s to at most n runes, the last of which is an
// ellipsis when anything was cut.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
