package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/core/summarizer"
	"github.com/refsage/refsage/internal/models"
)

// SummaryRequest identifies one entry and carries the source text to reduce.
// Regenerate bypasses the stored summary and recomputes.
type SummaryRequest struct {
	LibraryPath string
	CitationKey string
	Texts       []string
	Regenerate  bool
}

// SummaryService resolves a request against the summary store first and only
// runs the summarization pipeline on a miss (or when bypassed). Keys with a
// missing library path or citation key are computed fresh every time and
// never persisted; that is an expected condition, logged and not an error.
type SummaryService struct {
	store      core.SummaryStore
	llm        core.LLMClient
	summarizer summarizer.Summarizer
	params     models.InferenceParameters
}

func NewSummaryService(store core.SummaryStore, llm core.LLMClient, s summarizer.Summarizer, params models.InferenceParameters) *SummaryService {
	return &SummaryService{store: store, llm: llm, summarizer: s, params: params}
}

// Summarize runs the lookup -> generate -> store-if-eligible state machine.
func (s *SummaryService) Summarize(ctx context.Context, req SummaryRequest) (models.Summary, error) {
	eligible := s.storageEligible(req)

	if eligible && !req.Regenerate {
		stored, err := s.store.GetSummary(ctx, req.LibraryPath, req.CitationKey)
		if err != nil {
			return models.Summary{}, fmt.Errorf("summary lookup: %w", err)
		}
		if stored != nil {
			return *stored, nil
		}
	}

	content, err := s.summarizer.SummarizeAll(ctx, s.llm, req.Texts)
	if err != nil {
		return models.Summary{}, fmt.Errorf("generate summary: %w", err)
	}

	summary := models.Summary{
		LibraryPath: req.LibraryPath,
		CitationKey: req.CitationKey,
		Content:     content,
		Model:       s.params.Model,
		UpdatedAt:   time.Now(),
	}

	if eligible {
		if err := s.store.PutSummary(ctx, summary); err != nil {
			return models.Summary{}, fmt.Errorf("store summary: %w", err)
		}
	}
	return summary, nil
}

// storageEligible requires both key halves; otherwise the summary stays
// unstored.
func (s *SummaryService) storageEligible(req SummaryRequest) bool {
	if strings.TrimSpace(req.LibraryPath) == "" {
		log.Printf("SummaryService: no library path for entry %q, summary will not be stored", req.CitationKey)
		return false
	}
	if strings.TrimSpace(req.CitationKey) == "" {
		log.Printf("SummaryService: entry in %q has no citation key, summary will not be stored", req.LibraryPath)
		return false
	}
	return true
}
