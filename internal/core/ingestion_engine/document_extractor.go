package ingestion_engine

import (
	"bytes"
	"context"
	"log"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"

	"github.com/refsage/refsage/internal/core"
)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// ExtractText uses docconv to extract text from the raw bytes based on
// content type and writes the extracted text as line fragments to the
// output channel.
func (e *DocconvExtractor) ExtractText(ctx context.Context, g *errgroup.Group, raw []byte, contentType string) (<-chan string, error) {
	out := make(chan string, 32)

	reader := bytes.NewReader(raw)

	g.Go(func() error {
		defer close(out)

		res, err := docconv.Convert(reader, contentType, e.useReadability)
		if err != nil {
			log.Printf("docconv: extraction failed for content type %q: %v", contentType, err)
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		text := res.Body
		if text == "" {
			log.Printf("docconv: extracted empty text for content type %q", contentType)
			return nil
		}

		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out, nil
}
