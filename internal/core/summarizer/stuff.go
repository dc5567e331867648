package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

// Stuff renders the whole text into one prompt and performs exactly one LLM
// call. It does no chunking, so it is only valid for inputs that fit the
// model's practical input limit; oversized inputs surface as an LLM error.
type Stuff struct {
	template *PromptTemplate
	params   models.InferenceParameters
}

// NewStuff builds a Stuff strategy. A nil template uses DefaultStuffPrompt.
func NewStuff(template *PromptTemplate, params models.InferenceParameters) *Stuff {
	if template == nil {
		template = NewPromptTemplate(DefaultStuffPrompt)
	}
	return &Stuff{template: template, params: params}
}

func (s *Stuff) Summarize(ctx context.Context, llm core.LLMClient, text string) (string, error) {
	prompt := s.template.Render(map[string]string{"text": text})
	resp, err := llm.Chat(ctx, []models.ChatMessage{models.UserMessage(prompt)}, s.params)
	if err != nil {
		return "", fmt.Errorf("stuff summarize: %w", err)
	}
	return resp.Content, nil
}

func (s *Stuff) SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error) {
	return s.Summarize(ctx, llm, strings.Join(texts, "\n"))
}

var _ Summarizer = (*Stuff)(nil)
