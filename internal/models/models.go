package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents a PDF (or other) attachment of one bibliography entry.
// LibraryPath plus CitationKey identify the entry the attachment belongs to.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	LibraryPath string    `db:"library_path" json:"library_path"` // absolute path of the bibliography file
	CitationKey string    `db:"citation_key" json:"citation_key"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"` // S3 URL
	ContentType string    `db:"content_type" json:"content_type"`
	Status      string    `db:"status" json:"status"` // uploaded | processing | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk represents one embedded text chunk from an attachment.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"embedding"` // pgvector column
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Role tags one side of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleError marks a failure surfaced into the visible conversation
	// instead of crashing the caller.
	RoleError Role = "error"
)

// ChatMessage is one immutable turn of a conversation. Conversations are
// chronological sequences persisted per (library path, citation key).
type ChatMessage struct {
	ID          string    `db:"id" json:"id"`
	LibraryPath string    `db:"library_path" json:"library_path"`
	CitationKey string    `db:"citation_key" json:"citation_key"`
	Role        Role      `db:"role" json:"role"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserMessage builds a user-role message with just content set.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message with just content set.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// ErrorMessage builds an error-role message with just content set.
func ErrorMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleError, Content: content}
}

// InferenceParameters configure a single LLM call. The fields are passed
// through to the provider untouched; zero values mean provider defaults.
type InferenceParameters struct {
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}

// Summary is the cached output of the summarization pipeline for one entry,
// keyed by (library path, citation key). Regeneration overwrites in place.
type Summary struct {
	LibraryPath string    `db:"library_path" json:"library_path"`
	CitationKey string    `db:"citation_key" json:"citation_key"`
	Content     string    `db:"content" json:"content"`
	Model       string    `db:"model" json:"model"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
