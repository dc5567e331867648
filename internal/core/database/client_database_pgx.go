package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/refsage/refsage/internal/config"
	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents (entry attachments)

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, library_path, citation_key, file_name, storage_url, content_type, status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.LibraryPath, doc.CitationKey, doc.FileName,
		doc.StorageURL, doc.ContentType, doc.Status, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, library_path, citation_key, file_name, storage_url, content_type, status, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.LibraryPath, &d.CitationKey, &d.FileName,
		&d.StorageURL, &d.ContentType, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, library_path, citation_key, file_name, storage_url, content_type, status, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.LibraryPath, &d.CitationKey, &d.FileName,
			&d.StorageURL, &d.ContentType, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Vector store over pgvector. Metadata lives in a jsonb column; filters use
// containment (@>), so an empty filter matches everything.

func (c *DatabaseClient) Add(ctx context.Context, text string, embedding []float32, metadata map[string]string) error {
	md, err := json.Marshal(metadata)
	if err != nil {
		return errors.Join(core.ErrVectorStore, err)
	}
	const q = `
		INSERT INTO vector_entries (id, text, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, now())
	`
	if _, err := c.db.ExecContext(ctx, q, uuid.NewString(), text, pgvector.NewVector(embedding), md); err != nil {
		return errors.Join(core.ErrVectorConnection, err)
	}
	return nil
}

func (c *DatabaseClient) Find(ctx context.Context, queryEmbedding []float32, params models.FindParameters, filter map[string]string) ([]models.FindResult, error) {
	fl, err := json.Marshal(filter)
	if err != nil {
		return nil, errors.Join(core.ErrVectorQuery, err)
	}
	// Cosine similarity = 1 - cosine distance. Postgres orders by distance,
	// which is the same ordering as descending similarity.
	const q = `
		SELECT text, 1 - (embedding <=> $1) AS score, metadata
		FROM vector_entries
		WHERE metadata @> $2
		  AND 1 - (embedding <=> $1) >= $3
		ORDER BY embedding <=> $1
		LIMIT $4
	`
	rows, err := c.db.QueryContext(ctx, q, pgvector.NewVector(queryEmbedding), fl, params.MinScore(), params.MaxResults())
	if err != nil {
		return nil, errors.Join(core.ErrVectorQuery, err)
	}
	defer rows.Close()

	var out []models.FindResult
	for rows.Next() {
		var (
			text  string
			score float64
			raw   []byte
		)
		if err := rows.Scan(&text, &score, &raw); err != nil {
			return nil, errors.Join(core.ErrVectorQuery, err)
		}
		md := map[string]string{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &md); err != nil {
				return nil, errors.Join(core.ErrVectorQuery, err)
			}
		}
		out = append(out, models.NewFindResult(text, score, md))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(core.ErrVectorQuery, err)
	}
	return out, nil
}

func (c *DatabaseClient) Remove(ctx context.Context, filter map[string]string) error {
	fl, err := json.Marshal(filter)
	if err != nil {
		return errors.Join(core.ErrVectorStore, err)
	}
	const q = `DELETE FROM vector_entries WHERE metadata @> $1`
	if _, err := c.db.ExecContext(ctx, q, fl); err != nil {
		return errors.Join(core.ErrVectorStore, err)
	}
	return nil
}

// Summaries, overwrite-by-key.

func (c *DatabaseClient) GetSummary(ctx context.Context, libraryPath, citationKey string) (*models.Summary, error) {
	const q = `
		SELECT library_path, citation_key, content, model, updated_at
		FROM summaries
		WHERE library_path = $1 AND citation_key = $2
	`
	var s models.Summary
	err := c.db.QueryRowContext(ctx, q, libraryPath, citationKey).Scan(
		&s.LibraryPath, &s.CitationKey, &s.Content, &s.Model, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) PutSummary(ctx context.Context, summary models.Summary) error {
	const q = `
		INSERT INTO summaries (library_path, citation_key, content, model, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (library_path, citation_key)
		DO UPDATE SET content = EXCLUDED.content, model = EXCLUDED.model, updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q, summary.LibraryPath, summary.CitationKey, summary.Content, summary.Model)
	return err
}

// Chat history, chronological per (library path, citation key).

func (c *DatabaseClient) AddChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if message == nil {
		return errors.New("nil chat message")
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO chat_messages (id, library_path, citation_key, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		message.ID, message.LibraryPath, message.CitationKey, string(message.Role), message.Content, message.CreatedAt)
	return err
}

func (c *DatabaseClient) GetChatMessages(ctx context.Context, libraryPath, citationKey string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, library_path, citation_key, role, content, created_at
		FROM chat_messages
		WHERE library_path = $1 AND citation_key = $2
		ORDER BY created_at ASC, id ASC
	`
	rows, err := c.db.QueryContext(ctx, q, libraryPath, citationKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var (
			m    models.ChatMessage
			role string
		)
		if err := rows.Scan(&m.ID, &m.LibraryPath, &m.CitationKey, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
