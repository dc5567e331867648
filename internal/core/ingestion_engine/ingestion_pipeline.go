package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/refsage/refsage/internal/core"
)

// Metadata keys attached to every stored vector.
const (
	MetaLibraryPath = "library_path"
	MetaCitationKey = "citation_key"
	MetaDocumentID  = "document_id"
	MetaPosition    = "position"
)

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, vectors core.VectorStore, emb core.EmbeddingProvider, extractor core.DocumentExtractor, cfg *IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, vectors: vectors, embedder: emb, extractor: extractor, cfg: cfg,
		jobs: make(chan string, 64),
	}
}

// Start runs worker goroutines reading from the jobs channel. Workers stop
// when ctx is cancelled; a job already in flight finishes its current stage
// and then observes the cancellation at the next channel handoff.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("DocumentIngestor: worker shutting down.")
					return
				case docID := <-i.jobs:
					log.Printf("DocumentIngestor: processing document %s on worker %d", docID, w)
					if err := i.ProcessOne(ctx, docID); err != nil {
						log.Printf("DocumentIngestor: error processing document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// ProcessOne streams, chunks, embeds and persists a single attachment.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	proctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := i.db.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", docID)
	}

	_ = i.db.UpdateDocumentStatus(proctx, docID, "processing")

	bucket, key := parseS3URL(doc.StorageURL)

	raw, err := i.obj.GetFile(proctx, bucket, key)
	if err != nil {
		_ = i.db.UpdateDocumentStatus(proctx, docID, "failed")
		return fmt.Errorf("get object: %w", err)
	}

	// Re-ingest replaces: drop any vectors from a previous run of this
	// attachment before writing new ones.
	if err := i.vectors.Remove(proctx, map[string]string{MetaDocumentID: docID}); err != nil {
		_ = i.db.UpdateDocumentStatus(proctx, docID, "failed")
		return fmt.Errorf("remove stale vectors: %w", err)
	}

	// Build an errgroup to tie the pipeline stages together.
	g, gctx := errgroup.WithContext(proctx)

	// extract document -> fragments (receive-only channel).
	fragCh, err := i.extractor.ExtractText(gctx, g, raw, doc.ContentType)
	if err != nil {
		_ = i.db.UpdateDocumentStatus(proctx, docID, "failed")
		return fmt.Errorf("extract: %w", err)
	}

	// fragments -> chunks (receive-only channel).
	chunkCh := i.streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	// chunks -> embed + persist.
	g.Go(func() error {
		return i.embedAndPersist(gctx, doc.LibraryPath, doc.CitationKey, docID, chunkCh, i.cfg.BatchSize)
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		_ = i.db.UpdateDocumentStatus(proctx, docID, "failed")
		return err
	}

	return i.db.UpdateDocumentStatus(proctx, docID, "ready")
}

// parseS3URL extracts the bucket and key from a typical virtual-hosted-style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

func positionMeta(pos int) string { return strconv.Itoa(pos) }
