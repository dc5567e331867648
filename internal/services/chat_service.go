package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

const chatSystemPrompt = "You are an assistant answering questions about one bibliography entry, " +
	"based only on the provided excerpts of its attached documents. " +
	"If the excerpts do not contain the answer, say so."

// ChatService answers a question about one entry: embed the question, fetch
// the most relevant chunks of the entry's attachments, and condition the LLM
// on them. Every turn, including failures, is appended to the entry's stored
// conversation; typed LLM/vector failures become role=error messages rather
// than crashes.
type ChatService struct {
	history  core.ChatStore
	vectors  core.VectorStore
	embedder core.EmbeddingProvider
	llm      core.LLMClient
	params   models.InferenceParameters
	find     models.FindParameters
}

func NewChatService(history core.ChatStore, vectors core.VectorStore, embedder core.EmbeddingProvider, llm core.LLMClient, params models.InferenceParameters, find models.FindParameters) *ChatService {
	return &ChatService{history: history, vectors: vectors, embedder: embedder, llm: llm, params: params, find: find}
}

// Ask runs one conversation turn for the entry at (libraryPath, citationKey).
// The returned message is what the UI should append after the question: the
// assistant's answer, or an error-role message describing the failure.
func (s *ChatService) Ask(ctx context.Context, libraryPath, citationKey, question string) (models.ChatMessage, error) {
	userMsg := models.ChatMessage{
		LibraryPath: libraryPath,
		CitationKey: citationKey,
		Role:        models.RoleUser,
		Content:     question,
		CreatedAt:   time.Now(),
	}
	if err := s.history.AddChatMessage(ctx, &userMsg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("append user message: %w", err)
	}

	reply, err := s.answer(ctx, libraryPath, citationKey, question)
	if err != nil {
		// Surface the typed failure into the conversation instead of
		// failing the turn.
		reply = models.ErrorMessage(userFacingError(err))
	}
	reply.LibraryPath = libraryPath
	reply.CitationKey = citationKey
	reply.CreatedAt = time.Now()

	if herr := s.history.AddChatMessage(ctx, &reply); herr != nil {
		return models.ChatMessage{}, fmt.Errorf("append reply: %w", herr)
	}
	return reply, nil
}

// History returns the entry's stored conversation in chronological order.
func (s *ChatService) History(ctx context.Context, libraryPath, citationKey string) ([]models.ChatMessage, error) {
	return s.history.GetChatMessages(ctx, libraryPath, citationKey)
}

func (s *ChatService) answer(ctx context.Context, libraryPath, citationKey, question string) (models.ChatMessage, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) == 0 {
		return models.ChatMessage{}, fmt.Errorf("embed question: empty embedding response")
	}

	filter := map[string]string{
		"library_path": libraryPath,
		"citation_key": citationKey,
	}
	hits, err := s.vectors.Find(ctx, vecs[0], s.find, filter)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("retrieve context: %w", err)
	}

	var sb strings.Builder
	for _, hit := range hits {
		sb.WriteString(hit.Text())
		sb.WriteString("\n---\n")
	}

	prior, err := s.history.GetChatMessages(ctx, libraryPath, citationKey)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("load history: %w", err)
	}

	params := s.params
	params.SystemPrompt = chatSystemPrompt

	// Replace the just-stored question with a context-grounded version for
	// the model; the stored history keeps the user's original words.
	conversation := make([]models.ChatMessage, 0, len(prior))
	for _, m := range prior[:max(0, len(prior)-1)] {
		conversation = append(conversation, m)
	}
	conversation = append(conversation, models.UserMessage(
		fmt.Sprintf("Context:\n%s\nQuestion: %s", sb.String(), question),
	))

	return s.llm.Chat(ctx, conversation, params)
}

// userFacingError maps the typed taxonomy onto a short message suitable for
// display inside the conversation.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, core.ErrLLMRateLimited):
		return "The language model is rate limiting requests. Please wait a moment and try again."
	case errors.Is(err, core.ErrLLMConnection):
		return "Could not reach the language model. Check your endpoint and API key settings."
	case errors.Is(err, core.ErrVectorConnection), errors.Is(err, core.ErrVectorQuery), errors.Is(err, core.ErrVectorStore):
		return "Searching the attached documents failed. Please try again."
	default:
		return fmt.Sprintf("The assistant could not answer: %v", err)
	}
}
