// Package summarizer reduces long document text to a short summary through
// repeated LLM calls. Three interchangeable strategies share one contract:
// Stuff (single pass), MapReduce (iterative chunk-then-combine) and Refine
// (sequential running-summary accumulation). Strategies hold no state across
// calls; the LLM handle is passed per call.
package summarizer

import (
	"context"
	"strings"

	"github.com/refsage/refsage/internal/core"
)

// Summarizer reduces text to a summary using the given LLM.
type Summarizer interface {
	// Summarize reduces one text.
	Summarize(ctx context.Context, llm core.LLMClient, text string) (string, error)

	// SummarizeAll reduces several texts to one summary. Unless a strategy
	// overrides it, the texts are joined with newlines and summarized once.
	SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error)
}

// PromptTemplate substitutes named slots ({name}) into a fixed template
// string. One pass, no recursive expansion.
type PromptTemplate struct {
	template string
}

func NewPromptTemplate(template string) *PromptTemplate {
	return &PromptTemplate{template: template}
}

// Render replaces each {name} slot with its value in a single pass.
func (t *PromptTemplate) Render(values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.template)
}

// Default prompt texts. Stuff/MapReduce use {text}; the Refine combine step
// uses {current_summary} and {new_document}.
const (
	DefaultStuffPrompt = "Write a concise summary of the following text. " +
		"Keep the key claims, methods and conclusions.\n\nText:\n{text}\n\nSummary:"

	DefaultRefineCombinePrompt = "You are refining a running summary of a document.\n\n" +
		"Current summary:\n{current_summary}\n\n" +
		"Summary of the next section:\n{new_document}\n\n" +
		"Produce an updated summary that integrates the new section. " +
		"Keep it concise and do not drop earlier key points.\n\nUpdated summary:"
)
