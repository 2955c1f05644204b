package oracle

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/verbatim/pkg/vector"
)

// RefusalPhrase is the exact sentence the model is instructed to answer with
// when the retrieved context does not contain the asked fact. A refusal is a
// successful answer, not an error.
const RefusalPhrase = "The provided context does not explicitly state this"

// promptTemplate carries the grounding rules the whole system's
// trustworthiness rests on. The rules bind the model to the Context block:
// no outside knowledge, explicit refusal, capped length, mandatory citation,
// no hedging.
const promptTemplate = `%s Answer based ONLY on the provided Context from the source documents.

RULES:
1. Use ONLY information explicitly stated in the Context
2. If information is not in the Context, say "%s"
3. Keep responses to 2-3 sentences maximum
4. End with source citation: [Source: filename, Page X]
5. Never hedge: no "likely" or "probably" - state what the Context says or refuse

Context:
%s

Question: %s

Answer:`

// CompilePrompt assembles the grounding prompt for a question and its
// retrieved chunks. Pure: the same inputs always yield the same prompt.
func CompilePrompt(persona, question string, results []vector.QueryResult) string {
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Text
	}
	context := strings.Join(texts, "\n\n")

	return fmt.Sprintf(promptTemplate, persona, RefusalPhrase, context, question)
}

// IsRefusal reports whether an answer is the grounding refusal rather than a
// substantive answer.
func IsRefusal(answer string) bool {
	return strings.Contains(answer, "does not explicitly state")
}
