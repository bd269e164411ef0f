package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex  = regexp.MustCompile(`\s+`)
	placeholderRunRegex   = regexp.MustCompile(`\$(\d+)(?:, ?\$\d+)*, ?\$(\d+)`)
	possessionColumnRegex = regexp.MustCompile(`possession_(\d+)(?:, ?possession_\d+)*, ?possession_(\d+)`)
)

// formatDBQueryForTrace keeps span names readable for the wide graphics
// upsert: runs of placeholders and possession columns are folded into ranges.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderRunRegex.ReplaceAllString(normalized, "$$$1..$$$2")
	normalized = possessionColumnRegex.ReplaceAllString(normalized, "possession_$1..possession_$2")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
