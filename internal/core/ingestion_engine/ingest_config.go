package ingestion_engine

import (
	"github.com/refsage/refsage/internal/core"
)

// IngestConfig tunes the streaming pipeline.
//
// TargetTokens:   approximate tokens per chunk (e.g., 500).
// OverlapTokens:  token overlap between consecutive chunks for context bleed (e.g., 50).
// BatchSize:      how many chunks to embed per batch (e.g., 32).
type IngestConfig struct {
	TargetTokens  int
	OverlapTokens int
	BatchSize     int
}

// chunk is the internal representation passed through the pipeline.
//
// Pos:      stable, zero-based position of the chunk inside the document.
// Text:     chunk content (built from one or more fragments).
// TokenCnt: approximate token count (used for batching and overlap math).
type chunk struct {
	Pos      int
	Text     string
	TokenCnt int
}

// DocumentIngestor orchestrates the background ingestion pipeline for entry
// attachments: fetch from object storage, extract text, chunk, embed, and
// write to the vector store tagged with the entry's (library path, citation
// key) metadata.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	vectors   core.VectorStore
	embedder  core.EmbeddingProvider
	extractor core.DocumentExtractor
	cfg       *IngestConfig
	jobs      chan string
}
