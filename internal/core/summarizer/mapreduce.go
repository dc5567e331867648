package summarizer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/refsage/refsage/internal/core"
)

// DefaultMaxRounds bounds the shrink loop. Termination normally follows from
// the chunk summarizer producing output shorter than its input; the bound
// turns a summarizer that fails to shrink into an error instead of a hang.
const DefaultMaxRounds = 16

// MapReduce shrinks text iteratively: while the text is longer than
// chunkSize, split it into overlapping chunks, summarize each chunk with the
// chunk summarizer (in parallel; chunks are independent), and join the
// per-chunk summaries with newlines as the next round's input. Once the text
// fits in chunkSize, one final pass runs through the combine summarizer.
type MapReduce struct {
	chunk     Summarizer
	combine   Summarizer
	chunkSize int
	overlap   int

	// MaxRounds caps shrink iterations; defaults to DefaultMaxRounds.
	MaxRounds int
}

// NewMapReduce validates the chunking configuration up front so an invalid
// overlap is caught at construction, not mid-run.
func NewMapReduce(chunk, combine Summarizer, chunkSize, overlap int) (*MapReduce, error) {
	if chunk == nil || combine == nil {
		return nil, fmt.Errorf("map-reduce: chunk and combine summarizers are required")
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("map-reduce: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("map-reduce: overlap %d must be in [0, chunk size %d)", overlap, chunkSize)
	}
	return &MapReduce{
		chunk:     chunk,
		combine:   combine,
		chunkSize: chunkSize,
		overlap:   overlap,
		MaxRounds: DefaultMaxRounds,
	}, nil
}

func (m *MapReduce) Summarize(ctx context.Context, llm core.LLMClient, text string) (string, error) {
	maxRounds := m.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	for round := 0; len(text) > m.chunkSize; round++ {
		if round >= maxRounds {
			return "", fmt.Errorf("map-reduce: text still %d chars after %d rounds, chunk summarizer is not shrinking its input", len(text), round)
		}

		parts := SplitOverlapping(text, m.chunkSize, m.overlap)
		summaries := make([]string, len(parts))

		g, gctx := errgroup.WithContext(ctx)
		for i, part := range parts {
			g.Go(func() error {
				s, err := m.chunk.Summarize(gctx, llm, part)
				if err != nil {
					return fmt.Errorf("map-reduce chunk %d: %w", i, err)
				}
				summaries[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}

		text = strings.Join(summaries, "\n")
	}

	return m.combine.Summarize(ctx, llm, text)
}

func (m *MapReduce) SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error) {
	return m.Summarize(ctx, llm, strings.Join(texts, "\n"))
}

var _ Summarizer = (*MapReduce)(nil)
