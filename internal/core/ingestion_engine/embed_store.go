package ingestion_engine

import (
	"context"
	"fmt"
)

// embedAndPersist consumes chunks, embeds them in batches, and writes each
// vector to the store tagged with the owning entry's metadata. This is the
// downstream sink of the pipeline.
//
// libraryPath/citationKey/docID: identity of the attachment being ingested.
// in:        chunk stream from streamChunk.
// batchSize: number of chunks to embed per batch (limits memory).
func (i *DocumentIngestor) embedAndPersist(
	ctx context.Context,
	libraryPath, citationKey, docID string,
	in <-chan chunk,
	batchSize int,
) error {
	batch := make([]chunk, 0, batchSize)

	// flush embeds the current batch and inserts it into the vector store.
	flush := func(items []chunk) error {
		if len(items) == 0 {
			return nil
		}

		texts := make([]string, len(items))
		for idx := range items {
			texts[idx] = items[idx].Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(items) {
			return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(items))
		}

		for k := range items {
			metadata := map[string]string{
				MetaLibraryPath: libraryPath,
				MetaCitationKey: citationKey,
				MetaDocumentID:  docID,
				MetaPosition:    positionMeta(items[k].Pos),
			}
			if err := i.vectors.Add(ctx, items[k].Text, vecs[k], metadata); err != nil {
				return fmt.Errorf("store vector %d: %w", items[k].Pos, err)
			}
		}
		return nil
	}

	// Read the stream and flush in batches.
	for c := range in {
		batch = append(batch, c)
		if len(batch) == batchSize {
			if err := flush(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	// Final tail.
	if err := flush(batch); err != nil {
		return err
	}
	return nil
}
