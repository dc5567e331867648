package core

import (
	"context"

	"github.com/refsage/refsage/internal/models"
)

// VectorStore persists embedded text and answers similarity queries.
// Filters are metadata equality constraints; an empty filter matches the
// whole collection.
type VectorStore interface {
	// Add inserts one embedded text with its metadata.
	Add(ctx context.Context, text string, embedding []float32, metadata map[string]string) error

	// Find returns hits ordered by descending score, truncated to
	// params.MaxResults(), with every score >= params.MinScore().
	Find(ctx context.Context, queryEmbedding []float32, params models.FindParameters, filter map[string]string) ([]models.FindResult, error)

	// Remove deletes all entries matching the filter. Matching nothing is
	// not an error.
	Remove(ctx context.Context, filter map[string]string) error
}

// SummaryStore owns the persisted mapping (library path, citation key) -> Summary.
type SummaryStore interface {
	// GetSummary returns the stored summary, or nil when none exists.
	GetSummary(ctx context.Context, libraryPath, citationKey string) (*models.Summary, error)

	// PutSummary overwrites by key; last write wins.
	PutSummary(ctx context.Context, summary models.Summary) error
}

// ChatStore persists per-entry conversations in chronological order.
type ChatStore interface {
	AddChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetChatMessages(ctx context.Context, libraryPath, citationKey string) ([]models.ChatMessage, error)
}

// DbClient defines the relational persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error

	VectorStore
	SummaryStore
	ChatStore

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
