package llm

import "strings"

// MergePrompt asks the model to rule on a suspected table split.
const MergePrompt = `Decide whether these two table fragments are halves of a single table that was split by a page or column break. Return a JSON object with these fields:

- "merge": true if the fragments form one table (boolean)
- "confidence": how sure you are, from 0.0 to 1.0 (float)
- "reason": one short sentence explaining the ruling (string)

Rules:
- The fragments belong together when the second continues the rows of the first: same columns, same kind of data, no fresh header row starting a new topic.
- A repeated header row at the top of the second fragment still counts as a continuation.
- Different column counts, different subject matter, or a caption between them mean separate tables.
- When in doubt, answer false.

Respond with ONLY the JSON object, no other text.`

// maxPromptRows bounds how many rows of each fragment the model sees.
const maxPromptRows = 12

// BuildMergePrompt renders the tail of the first fragment and the head
// of the second into the judging prompt.
func BuildMergePrompt(a, b [][]string) string {
	var sb strings.Builder
	sb.WriteString(MergePrompt)
	sb.WriteString("\n\n--- First fragment (last rows) ---\n")
	sb.WriteString(renderRows(a, true))
	sb.WriteString("--- Second fragment (first rows) ---\n")
	sb.WriteString(renderRows(b, false))
	return sb.String()
}

func renderRows(rows [][]string, tail bool) string {
	if len(rows) > maxPromptRows {
		if tail {
			rows = rows[len(rows)-maxPromptRows:]
		} else {
			rows = rows[:maxPromptRows]
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |\n")
	}
	return sb.String()
}
