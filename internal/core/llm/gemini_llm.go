package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

var errEmptyConversation = errors.New("conversation has no sendable messages")

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, core.ClassifyLLMError(err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Chat sends the full conversation and returns the single response message.
func (g *GeminiLLM) Chat(ctx context.Context, messages []models.ChatMessage, params models.InferenceParameters) (models.ChatMessage, error) {
	modelName := params.Model
	if modelName == "" {
		modelName = g.modelName
	}
	m := g.client.GenerativeModel(modelName)
	if params.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(params.SystemPrompt)},
		}
	}
	if params.Temperature != nil {
		m.SetTemperature(float32(*params.Temperature))
	}

	history, last := splitConversation(messages)
	if last == "" {
		return models.ChatMessage{}, core.ClassifyLLMError(errEmptyConversation)
	}

	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return models.ChatMessage{}, core.ClassifyLLMError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.AssistantMessage(""), nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return models.AssistantMessage(b.String()), nil
}

// splitConversation maps the chronological messages onto Gemini's
// history-plus-final-message shape. Error-role messages are display
// artifacts of the conversation, not model input, and are skipped.
func splitConversation(messages []models.ChatMessage) ([]*genai.Content, string) {
	kept := make([]models.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == models.RoleError {
			continue
		}
		kept = append(kept, msg)
	}
	if len(kept) == 0 {
		return nil, ""
	}

	last := kept[len(kept)-1]
	history := make([]*genai.Content, 0, len(kept)-1)
	for _, msg := range kept[:len(kept)-1] {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history, last.Content
}

var _ core.LLMClient = (*GeminiLLM)(nil)
