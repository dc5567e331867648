package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DocumentExtractor extracts plain text from a binary attachment.
type DocumentExtractor interface {
	// ExtractText parses the raw bytes and streams the extracted text as
	// line fragments. The contentType hint selects the parsing strategy.
	// Extraction runs inside the supplied errgroup so downstream pipeline
	// stages share its cancellation.
	ExtractText(ctx context.Context, g *errgroup.Group, raw []byte, contentType string) (<-chan string, error)
}
