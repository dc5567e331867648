package summarizer

import (
	"context"
	"fmt"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

// Refine accumulates a running summary over a sequence of texts. For each
// text it first produces a standalone summary via the section summarizer,
// then folds that into the running summary (seeded empty) through the
// combine template. The fold is strictly sequential: each step depends on
// the previous running summary, so SummarizeAll never reorders or
// parallelizes its inputs.
type Refine struct {
	section  Summarizer
	template *PromptTemplate // slots: current_summary, new_document
	params   models.InferenceParameters
}

// NewRefine builds a Refine strategy. A nil template uses
// DefaultRefineCombinePrompt.
func NewRefine(section Summarizer, template *PromptTemplate, params models.InferenceParameters) (*Refine, error) {
	if section == nil {
		return nil, fmt.Errorf("refine: section summarizer is required")
	}
	if template == nil {
		template = NewPromptTemplate(DefaultRefineCombinePrompt)
	}
	return &Refine{section: section, template: template, params: params}, nil
}

func (r *Refine) Summarize(ctx context.Context, llm core.LLMClient, text string) (string, error) {
	return r.SummarizeAll(ctx, llm, []string{text})
}

func (r *Refine) SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error) {
	running := ""
	for i, text := range texts {
		section, err := r.section.Summarize(ctx, llm, text)
		if err != nil {
			return "", fmt.Errorf("refine section %d: %w", i, err)
		}

		prompt := r.template.Render(map[string]string{
			"current_summary": running,
			"new_document":    section,
		})
		resp, err := llm.Chat(ctx, []models.ChatMessage{models.UserMessage(prompt)}, r.params)
		if err != nil {
			return "", fmt.Errorf("refine combine %d: %w", i, err)
		}
		running = resp.Content
	}
	return running, nil
}

var _ Summarizer = (*Refine)(nil)
