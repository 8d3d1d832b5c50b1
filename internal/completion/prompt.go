package completion

import (
	"strings"
)

const systemInstruction = "You are a helpful SQL assistant."

// holds the context placed into the user prompt
type promptContext struct {
	Recent  []string
	Similar []string
	Current string
}

// builds the user prompt for the completion request
func buildPrompt(ctx promptContext) string {
	var builder strings.Builder

	builder.WriteString("You are a SQL autocomplete assistant for pgAdmin.\n")
	builder.WriteString("Based on the user's recent activity and similar past queries, predict the completion for the current partial query.\n\n")

	builder.WriteString("User's Recent Queries:\n")
	writeList(&builder, ctx.Recent)
	builder.WriteString("\n")

	builder.WriteString("Similar Past Queries:\n")
	writeList(&builder, ctx.Similar)
	builder.WriteString("\n")

	builder.WriteString("Current Partial Query:\n")
	builder.WriteString(ctx.Current)
	builder.WriteString("\n\n")

	builder.WriteString(getInstructions())

	return builder.String()
}

func writeList(builder *strings.Builder, items []string) {
	for _, item := range items {
		builder.WriteString("- ")
		builder.WriteString(item)
		builder.WriteString("\n")
	}
}

func getInstructions() string {
	return `Instruction:
Return ONLY the completion string that should be appended to the current partial query to make it a valid and likely SQL statement.
Do not repeat the partial query. Do not include markdown formatting.
If you cannot predict with confidence, return an empty string.
`
}

// takes the last n entries, then drops the blank ones
func truncateRecent(queries []string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	if len(queries) > n {
		queries = queries[len(queries)-n:]
	}

	kept := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) != "" {
			kept = append(kept, q)
		}
	}

	return kept
}
