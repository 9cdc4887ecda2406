// Package strings holds small string-slice helpers shared across the service.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace, drops empties, and removes duplicates while
// preserving first-seen order. Used to normalize notification recipient lists
// assembled from several sources.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// DedupeAndTrimFold is DedupeAndTrim with case-insensitive comparison,
// lowercasing the output. Suited to country codes and similar case-blind
// identifiers.
func DedupeAndTrimFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
