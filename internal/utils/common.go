// Package utils provides shared string helpers used across packages.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitAndTrim splits a string by sep and trims whitespace from each part.
// Empty parts are omitted from the result. Order and duplicates are preserved.
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// JSONPointerToPath converts a JSON Pointer (RFC 6901) to a dot-notation path.
// For example, "#/0/tags/1" becomes "[0].tags[1]".
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		// ~1 is "/" and ~0 is "~"
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// NormalizeName lowercases and trims a user-supplied keyword.
func NormalizeName(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// NormalizeList splits a comma-separated list and normalizes each entry.
// Returns nil when nothing remains.
func NormalizeList(input string) []string {
	parts := SplitAndTrim(input, ",")
	if len(parts) == 0 {
		return nil
	}
	for i, p := range parts {
		parts[i] = NormalizeName(p)
	}
	return parts
}
