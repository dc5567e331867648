package llm

import (
	"testing"

	"github.com/refsage/refsage/internal/models"
)

func TestSplitConversation(t *testing.T) {
	messages := []models.ChatMessage{
		models.UserMessage("q1"),
		models.AssistantMessage("a1"),
		models.ErrorMessage("the model was unreachable"),
		models.UserMessage("q2"),
	}

	history, last := splitConversation(messages)
	if last != "q2" {
		t.Errorf("last = %q, want q2", last)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries, want 2 (error turns excluded)", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Errorf("history roles = %q, %q", history[0].Role, history[1].Role)
	}
}

func TestSplitConversation_Empty(t *testing.T) {
	if _, last := splitConversation(nil); last != "" {
		t.Errorf("last = %q for empty conversation", last)
	}

	// A conversation of only error turns has nothing to send either.
	_, last := splitConversation([]models.ChatMessage{models.ErrorMessage("boom")})
	if last != "" {
		t.Errorf("last = %q for error-only conversation", last)
	}
}

func TestToOpenAIMessages_SkipsErrorTurns(t *testing.T) {
	messages := []models.ChatMessage{
		models.UserMessage("q1"),
		models.ErrorMessage("rate limited"),
		models.AssistantMessage("a1"),
	}

	out := toOpenAIMessages(messages, "system text")
	// system + user + assistant; the error turn is dropped.
	if len(out) != 3 {
		t.Errorf("got %d messages, want 3", len(out))
	}

	out = toOpenAIMessages(messages, "")
	if len(out) != 2 {
		t.Errorf("got %d messages without system prompt, want 2", len(out))
	}
}
