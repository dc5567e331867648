package llm

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

// OpenAILLM drives an OpenAI-compatible chat-completions endpoint. Rate
// limits are retried with a bounded backoff before the typed failure is
// propagated; other failures surface immediately.
type OpenAILLM struct {
	client    *openai.Client
	modelName string
}

var rateLimitWaits = []time.Duration{5 * time.Second, 20 * time.Second, 45 * time.Second}

func NewOpenAILLM(apiKey, modelName string) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAILLM{client: &client, modelName: modelName}
}

func (o *OpenAILLM) Chat(ctx context.Context, messages []models.ChatMessage, params models.InferenceParameters) (models.ChatMessage, error) {
	modelName := params.Model
	if modelName == "" {
		modelName = o.modelName
	}

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: toOpenAIMessages(messages, params.SystemPrompt),
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}

	resp, err := o.completeWithRetry(ctx, req)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return models.AssistantMessage(""), nil
	}
	return models.AssistantMessage(resp.Choices[0].Message.Content), nil
}

func (o *OpenAILLM) completeWithRetry(ctx context.Context, req openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := o.client.Chat.Completions.New(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = core.ClassifyLLMError(err)
		if !core.RetryableLLMError(lastErr) || attempt >= len(rateLimitWaits) {
			return nil, lastErr
		}
		select {
		case <-time.After(rateLimitWaits[attempt]):
		case <-ctx.Done():
			return nil, errors.Join(lastErr, ctx.Err())
		}
	}
}

func toOpenAIMessages(messages []models.ChatMessage, systemPrompt string) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case models.RoleError:
			// Display artifact of the conversation, not model input.
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

var _ core.LLMClient = (*OpenAILLM)(nil)
