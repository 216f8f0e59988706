// Package strings provides small list helpers shared by configuration
// parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace from each element and drops blanks and
// duplicates. First-seen order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{" broker-a:9092 ", "broker-b:9092", "broker-a:9092", ""})
//	// Returns: []string{"broker-a:9092", "broker-b:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
