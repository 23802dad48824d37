package memory

import (
	"fmt"
	"strings"
)

// promptPreamble tells the model the excerpts are background only.
const promptPreamble = "Relevant excerpts from earlier conversations. " +
	"Use them as background reference only; the current instruction takes priority.\n\n"

// composePrompt packs ranked snippets into a text block bounded by
// maxChars, including the preamble. Blocks are appended in rank order
// until the next one would exceed the budget. If even the first block
// does not fit, the result is empty.
func composePrompt(hits []Hit, maxChars int) string {
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	total := len(promptPreamble)
	included := 0
	for i, h := range hits {
		source := h.Source
		if source == "" {
			source = "unknown"
		}
		block := fmt.Sprintf("[%d] score=%.2f source=%s\n%s\n\n", i+1, h.Score, source, strings.TrimSpace(h.Snippet))
		if total+len(block) > maxChars {
			break
		}
		b.WriteString(block)
		total += len(block)
		included++
	}

	if included == 0 {
		return ""
	}
	return promptPreamble + strings.TrimRight(b.String(), "\n") + "\n"
}
