package openai

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = `You summarize search results for quality engineers.
Given a question and a numbered list of retrieved documents, answer the question
using only the documents. Be concise. If the documents do not answer the
question, say so plainly.`

// buildSummaryPrompt renders the caller's prompt followed by the numbered
// document list the model should answer from.
func buildSummaryPrompt(prompt string, docs []string) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nDocuments:\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc)
	}
	return b.String()
}
