package tui

import (
	"strings"
	"time"
)

const (
	// typing pause before a suggestion is requested
	debounceInterval = 800 * time.Millisecond

	// the current line must be longer than this to request a suggestion
	minSuggestLength = 5

	// executed queries kept locally; the server only uses the most recent few
	maxRecentQueries = 50

	requestTimeout = 30 * time.Second

	statsTimeout       = 5 * time.Second
	readyPollInterval  = 250 * time.Millisecond
	serverStartTimeout = 20 * time.Second
)

// keywords after which an appended suggestion starts a new token
var keywordBoundaries = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "JOIN": {}, "ON": {}, "AND": {}, "OR": {},
	"BY": {}, "SET": {}, "INTO": {}, "VALUES": {}, "UPDATE": {}, "TABLE": {},
	"AS": {}, "LIMIT": {}, "HAVING": {}, "DISTINCT": {}, "NOT": {}, "IN": {},
}

// the trimmed last line of the editor text
func currentLine(text string) string {
	lines := strings.Split(text, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func shouldSuggest(text string) bool {
	return len(currentLine(text)) > minSuggestLength
}

// appends a suggestion to the partial query, adding a space when the
// partial query ends on a complete keyword
func joinSuggestion(current, suggestion string) string {
	if suggestion == "" {
		return current
	}

	if current == "" || strings.HasSuffix(current, " ") || strings.ContainsAny(suggestion[:1], ",;).") {
		return current + suggestion
	}

	fields := strings.Fields(current)
	if len(fields) > 0 {
		if _, ok := keywordBoundaries[strings.ToUpper(fields[len(fields)-1])]; ok {
			return current + " " + suggestion
		}
	}

	return current + suggestion
}

// appends q and keeps at most maxRecentQueries entries
func appendRecent(recent []string, q string) []string {
	recent = append(recent, q)
	if len(recent) > maxRecentQueries {
		recent = recent[len(recent)-maxRecentQueries:]
	}

	return recent
}
