package completion

import "strings"

// turns raw model output into the text to append to the partial query
func normalize(raw, current string) string {
	text := strings.TrimSpace(raw)

	// a single fenced block means the model ignored the no-markdown rule
	if strings.Count(text, "```") == 2 {
		if code := extractCodeFromFence(text); code != "" {
			text = code
		}
	}

	// strip an echoed copy of the partial query
	for _, prefix := range []string{current, strings.TrimSpace(current)} {
		if prefix != "" && strings.HasPrefix(text, prefix) {
			text = text[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(text)
}

// extracts the content of a single markdown fence pair.
// returns empty string if extraction fails.
func extractCodeFromFence(response string) string {
	startIdx := strings.Index(response, "```")
	if startIdx == -1 {
		return ""
	}

	// find end of opening fence line (skip language identifier)
	afterStart := startIdx + 3
	newlineIdx := strings.Index(response[afterStart:], "\n")
	if newlineIdx == -1 {
		return ""
	}
	codeStart := afterStart + newlineIdx + 1

	// find closing fence
	endIdx := strings.Index(response[codeStart:], "```")
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(response[codeStart : codeStart+endIdx])
}
