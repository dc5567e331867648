package core

import (
	"context"

	"github.com/refsage/refsage/internal/models"
)

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMClient performs one inference over a full chronological conversation.
// Exactly one response message comes back per call; there is no streaming.
// The caller owns any context-window truncation. Failures are wrapped with
// the sentinels in errors.go (rate limit, connection, generic inference).
type LLMClient interface {
	Chat(ctx context.Context, messages []models.ChatMessage, params models.InferenceParameters) (models.ChatMessage, error)
}
